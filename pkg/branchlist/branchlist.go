// Package branchlist reads and writes branch lists of a HUC: the
// `branch_ids.csv` file with `huc,branch` records and the `branch_ids.lst`
// file with one branch ID per line.
package branchlist

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Entry is one branch of a HUC.
type Entry struct {
	HUC    string
	Branch int
}

// Build returns entries of level-path branches in ascending order
// followed by branch zero.
func Build(huc string, branches []int) []Entry {
	ids := slices.Clone(branches)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	res := make([]Entry, 0, len(ids)+1)
	for _, id := range ids {
		if id == 0 {
			continue
		}
		res = append(res, Entry{HUC: huc, Branch: id})
	}
	return append(res, Entry{HUC: huc, Branch: 0})
}

// Remove drops a branch of a HUC from the list.
func Remove(entries []Entry, huc string, branch int) []Entry {
	return slices.DeleteFunc(slices.Clone(entries), func(e Entry) bool {
		return e.HUC == huc && e.Branch == branch
	})
}

// Branches returns branch IDs of the entries.
func Branches(entries []Entry) []int {
	res := make([]int, len(entries))
	for i, e := range entries {
		res[i] = e.Branch
	}
	return res
}

// Read parses a headerless `huc,branch` CSV.
func Read(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	var res []Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("bad branch id %q: %w", rec[1], err)
		}
		res = append(res, Entry{HUC: strings.TrimSpace(rec[0]), Branch: id})
	}
	return res, nil
}

// Write writes entries as a headerless CSV.
func Write(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	for _, e := range entries {
		if err := cw.Write([]string{e.HUC, strconv.Itoa(e.Branch)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteList writes branch IDs one per line. Branch zero is left out.
func WriteList(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if e.Branch == 0 {
			continue
		}
		if _, err := fmt.Fprintln(bw, e.Branch); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadList parses a branch ID list, blank lines are skipped.
func ReadList(r io.Reader) ([]int, error) {
	var res []int
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		for _, f := range strings.Fields(sc.Text()) {
			id, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("bad branch id %q: %w", f, err)
			}
			res = append(res, id)
		}
	}
	return res, sc.Err()
}
