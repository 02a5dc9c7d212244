package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"sensordash/internal/modules/sensor/sheet"
	"sensordash/internal/modules/sensor/tableview"
	"sensordash/internal/modules/sensor/types"
	"sensordash/internal/modules/sensor/views"
)

// tableQuery is the parsed filter/sort/page state shared by the history
// partial, the readings API and the CSV export.
type tableQuery struct {
	date         string
	fromHour     int
	toHour       int
	hourFiltered bool
	sort         tableview.Column
	descending   bool
	page         int
}

func parseTableQuery(r *http.Request) (tableQuery, error) {
	q := r.URL.Query()
	out := tableQuery{sort: tableview.ColumnDate, page: 1}

	if s := q.Get("date"); s != "" {
		date, err := sheet.NormalizeDate(s)
		if err != nil {
			return tableQuery{}, errors.New("invalid 'date' (expected a calendar date)")
		}
		out.date = date
	}

	fromStr, toStr := q.Get("from_hour"), q.Get("to_hour")
	if fromStr != "" || toStr != "" {
		out.hourFiltered = true
		out.fromHour = 0
		out.toHour = 23
		if fromStr != "" {
			n, err := strconv.Atoi(fromStr)
			if err != nil || n < 0 || n > 23 {
				return tableQuery{}, errors.New("invalid 'from_hour' (expected 0-23)")
			}
			out.fromHour = n
		}
		if toStr != "" {
			n, err := strconv.Atoi(toStr)
			if err != nil || n < 0 || n > 23 {
				return tableQuery{}, errors.New("invalid 'to_hour' (expected 0-23)")
			}
			out.toHour = n
		}
	}

	if s := q.Get("sort"); s != "" {
		col, err := tableview.ParseColumn(s)
		if err != nil {
			return tableQuery{}, err
		}
		out.sort = col
	}

	switch order := q.Get("order"); order {
	case "", "asc":
	case "desc":
		out.descending = true
	default:
		return tableQuery{}, fmt.Errorf("invalid 'order' %q (allowed: asc, desc)", order)
	}

	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return tableQuery{}, errors.New("invalid 'page' (expected integer)")
		}
		if n < 1 {
			n = 1
		}
		out.page = n
	}

	return out, nil
}

// applyTableQuery runs the filter and sort steps; pagination is left to the
// caller since the export endpoint skips it.
func applyTableQuery(readings []types.Reading, q tableQuery) []types.Reading {
	rows := readings
	if q.date != "" {
		rows = tableview.FilterByDate(rows, q.date)
	}
	if q.hourFiltered {
		rows = tableview.FilterByHourRange(rows, q.fromHour, q.toHour)
	}
	return tableview.SortBy(rows, q.sort, q.descending)
}

// buildPageItems returns page numbers and ellipsis for the pagination bar.
func buildPageItems(totalPages, currentPage int) []views.PaginationItem {
	if totalPages <= 0 {
		return nil
	}
	const window = 2
	show := map[int]bool{1: true, totalPages: true}
	for p := currentPage - window; p <= currentPage+window; p++ {
		if p >= 1 && p <= totalPages {
			show[p] = true
		}
	}
	var items []views.PaginationItem
	prev := 0
	for p := 1; p <= totalPages; p++ {
		if !show[p] {
			continue
		}
		if prev != 0 && p > prev+1 {
			items = append(items, views.PaginationItem{Ellipsis: true})
		}
		items = append(items, views.PaginationItem{Page: p, Ellipsis: false})
		prev = p
	}
	return items
}
