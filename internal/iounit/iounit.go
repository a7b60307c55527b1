// Package iounit keeps track of failed HUCs and branches: one error log
// per failure in the unit errors directory, the summary of all of them,
// the list of removed branches and the unit error threshold.
package iounit

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branchlist"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

// HUCBranch marks records of failures of a whole HUC.
const HUCBranch = -1

const hucLogSuffix = "_unit_errors.log"

// Record is one failure.
type Record struct {
	HUC    string
	Branch int
	Code   int
	Msg    string
}

// Quarantined reports if the failure only drops branches and leaves the
// rest of the HUC usable.
func (r Record) Quarantined() bool {
	switch gn.ErrorCode(r.Code) {
	case errcode.NoFlowlinesExist, errcode.NoBranchLevelpathsExist,
		errcode.NoValidCrosswalks:
		return true
	}
	return false
}

// NewRecord describes err of a branch, or of a HUC when branch is
// HUCBranch.
func NewRecord(huc string, branch int, err error) Record {
	code := errcode.ExitCode(err)
	msg := err.Error()
	var gnErr *gn.Error
	if errors.As(err, &gnErr) && gnErr.Msg != "" {
		msg = fmt.Sprintf(stripTags(gnErr.Msg), gnErr.Vars...)
	}
	return Record{HUC: huc, Branch: branch, Code: code, Msg: msg}
}

// Log writes the record to its own file in the unit errors directory.
func Log(l iofs.Layout, r Record) error {
	if err := l.MakeUnitErrorsDir(); err != nil {
		return err
	}
	path := logPath(l, r)
	f, err := os.Create(path)
	if err != nil {
		return iofs.WriteFileError(path, err)
	}
	if err = writeRecords(f, []Record{r}); err != nil {
		_ = f.Close()
		return iofs.WriteFileError(path, err)
	}
	return f.Close()
}

func logPath(l iofs.Layout, r Record) string {
	if r.Branch == HUCBranch {
		return filepath.Join(l.UnitErrorsDir(), r.HUC+hucLogSuffix)
	}
	return l.UnitErrorLog(r.HUC, r.Branch)
}

// Records reads all error logs except the summary, ordered by HUC and
// branch.
func Records(l iofs.Layout) ([]Record, error) {
	dir := l.UnitErrorsDir()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, iofs.ReadFileError(dir, err)
	}
	var res []Record
	for _, e := range entries {
		if e.IsDir() || e.Name() == iofs.UnitErrorsSummary {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, iofs.ReadFileError(path, err)
		}
		recs, err := readRecords(f)
		_ = f.Close()
		if err != nil {
			return nil, iofs.ReadFileError(path, err)
		}
		res = append(res, recs...)
	}
	slices.SortFunc(res, func(a, b Record) int {
		return cmp.Or(cmp.Compare(a.HUC, b.HUC), cmp.Compare(a.Branch, b.Branch))
	})
	return res, nil
}

// WriteSummary collects all records into the summary log.
func WriteSummary(l iofs.Layout) ([]Record, error) {
	recs, err := Records(l)
	if err != nil || len(recs) == 0 {
		return recs, err
	}
	path := filepath.Join(l.UnitErrorsDir(), iofs.UnitErrorsSummary)
	f, err := os.Create(path)
	if err != nil {
		return nil, iofs.WriteFileError(path, err)
	}
	if err = writeRecords(f, recs); err != nil {
		_ = f.Close()
		return nil, iofs.WriteFileError(path, err)
	}
	return recs, f.Close()
}

// FailedUnits returns the sorted HUCs with at least one record that is
// not a branch quarantine.
func FailedUnits(recs []Record) []string {
	var res []string
	for _, r := range recs {
		if r.Quarantined() {
			continue
		}
		res = append(res, r.HUC)
	}
	slices.Sort(res)
	return slices.Compact(res)
}

// Check returns EXCESS_UNIT_ERRORS when failed units reach both the
// absolute and the relative threshold.
func Check(failed, submitted int, cfg config.ErrorsConfig) error {
	if submitted == 0 || failed == 0 {
		return nil
	}
	pct := 100 * float64(failed) / float64(submitted)
	if failed >= cfg.MinUnitErrors && pct >= cfg.MaxUnitErrorsPercent {
		return ExcessUnitErrorsError(failed, submitted, pct)
	}
	return nil
}

// WriteRemoved writes removed branches as a headerless `huc,branch` CSV.
func WriteRemoved(path string, removed []branchlist.Entry) error {
	slices.SortFunc(removed, func(a, b branchlist.Entry) int {
		return cmp.Or(cmp.Compare(a.HUC, b.HUC), cmp.Compare(a.Branch, b.Branch))
	})
	f, err := os.Create(path)
	if err != nil {
		return iofs.WriteFileError(path, err)
	}
	if err = branchlist.Write(f, removed); err != nil {
		_ = f.Close()
		return iofs.WriteFileError(path, err)
	}
	return f.Close()
}

func writeRecords(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	for _, r := range recs {
		err := cw.Write([]string{
			r.HUC,
			strconv.Itoa(r.Branch),
			strconv.Itoa(r.Code),
			errcode.Name(gn.ErrorCode(r.Code)),
			r.Msg,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	var res []Record
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		branch, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, err
		}
		code, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, err
		}
		res = append(res, Record{HUC: rec[0], Branch: branch, Code: code, Msg: rec[4]})
	}
}

func stripTags(s string) string {
	return strings.NewReplacer("<em>", "", "</em>", "").Replace(s)
}
