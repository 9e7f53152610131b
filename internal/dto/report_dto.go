package dto

import (
	"strconv"
	"time"
)

const tsLayout = "2006-01-02 15:04:05"

// Report is implemented by every report body; Table gives the layout used
// for the PDF export.
type Report interface {
	Table() Table
}

// Table is a report flattened into titled sections of text cells.
type Table struct {
	Title    string
	Date     time.Time
	Sections []TableSection
}

type TableSection struct {
	Heading string
	Columns []string
	Rows    [][]string
}

// ─── Timestamp reports ───────────────────────────────────────────────────────

type TimestampEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PartsTimestampReport struct {
	Title string           `json:"title"`
	Date  time.Time        `json:"date"`
	Parts []TimestampEntry `json:"parts"`
}

func (r PartsTimestampReport) Table() Table {
	return Table{Title: r.Title, Date: r.Date, Sections: []TableSection{timestampSection("", r.Parts)}}
}

type ProductsTimestampReport struct {
	Title    string           `json:"title"`
	Date     time.Time        `json:"date"`
	Products []TimestampEntry `json:"products"`
}

func (r ProductsTimestampReport) Table() Table {
	return Table{Title: r.Title, Date: r.Date, Sections: []TableSection{timestampSection("", r.Products)}}
}

func timestampSection(heading string, entries []TimestampEntry) TableSection {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, e.CreatedAt.Format(tsLayout), e.UpdatedAt.Format(tsLayout)}
	}
	return TableSection{Heading: heading, Columns: []string{"Name", "Created", "Updated"}, Rows: rows}
}

type UserTimestampEntry struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UsersTimestampReport struct {
	Title string               `json:"title"`
	Date  time.Time            `json:"date"`
	Users []UserTimestampEntry `json:"users"`
}

func (r UsersTimestampReport) Table() Table {
	rows := make([][]string, len(r.Users))
	for i, u := range r.Users {
		rows[i] = []string{u.FirstName + " " + u.LastName, u.Email, u.CreatedAt.Format(tsLayout), u.UpdatedAt.Format(tsLayout)}
	}
	return Table{Title: r.Title, Date: r.Date, Sections: []TableSection{{
		Columns: []string{"Name", "Email", "Created", "Updated"},
		Rows:    rows,
	}}}
}

// ─── Low stock ───────────────────────────────────────────────────────────────

// LowStockEntry reports a record whose stock is within Threshold of its
// minimum. Headroom is stock - min.
type LowStockEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Headroom int    `json:"headroom"`
}

type LowStockReport struct {
	Title     string          `json:"title"`
	Date      time.Time       `json:"date"`
	Threshold int             `json:"threshold"`
	Parts     []LowStockEntry `json:"parts"`
	Products  []LowStockEntry `json:"products"`
}

func (r LowStockReport) Table() Table {
	section := func(heading string, entries []LowStockEntry) TableSection {
		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{e.Name, itoa(e.Stock), itoa(e.Min), itoa(e.Max), itoa(e.Headroom)}
		}
		return TableSection{Heading: heading, Columns: []string{"Name", "Stock", "Min", "Max", "Headroom"}, Rows: rows}
	}
	return Table{Title: r.Title, Date: r.Date, Sections: []TableSection{
		section("Parts", r.Parts),
		section("Products", r.Products),
	}}
}

// ─── Parts by type ───────────────────────────────────────────────────────────

type PartSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"` // machine id or company name
	Stock  int    `json:"stock"`
}

type PartTypeGroup struct {
	Type  string        `json:"type"`
	Count int           `json:"count"`
	Parts []PartSummary `json:"parts"`
}

type PartsByTypeReport struct {
	Title  string          `json:"title"`
	Date   time.Time       `json:"date"`
	Groups []PartTypeGroup `json:"groups"`
}

func (r PartsByTypeReport) Table() Table {
	t := Table{Title: r.Title, Date: r.Date}
	for _, g := range r.Groups {
		rows := make([][]string, len(g.Parts))
		for i, p := range g.Parts {
			rows[i] = []string{p.Name, p.Source, itoa(p.Stock)}
		}
		t.Sections = append(t.Sections, TableSection{
			Heading: g.Type + " (" + itoa(g.Count) + ")",
			Columns: []string{"Name", "Source", "Stock"},
			Rows:    rows,
		})
	}
	return t
}

// ─── Product/part association ────────────────────────────────────────────────

type AssociationEntry struct {
	PartID string `json:"partId"`
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

type ProductAssociation struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Parts        []AssociationEntry `json:"parts"`
	MissingParts int                `json:"missingParts"`
}

type ProductPartsAssociationReport struct {
	Title    string               `json:"title"`
	Date     time.Time            `json:"date"`
	Products []ProductAssociation `json:"products"`
}

func (r ProductPartsAssociationReport) Table() Table {
	var rows [][]string
	for _, p := range r.Products {
		if len(p.Parts) == 0 {
			rows = append(rows, []string{p.Name, "-", ""})
			continue
		}
		for _, ap := range p.Parts {
			status := "ok"
			if !ap.Exists {
				status = "missing"
			}
			rows = append(rows, []string{p.Name, ap.Name, status})
		}
	}
	return Table{Title: r.Title, Date: r.Date, Sections: []TableSection{{
		Columns: []string{"Product", "Part", "Status"},
		Rows:    rows,
	}}}
}

func itoa(n int) string { return strconv.Itoa(n) }
