package model

import (
	"path"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/types"
)

// accessionPattern matches series, sample, experiment and run identifiers:
// three non-space characters followed by seven digits (e.g. GSM1234567)
var accessionPattern = regexp.MustCompile(`^\S{3}\d{7}$`)

// IsAccession reports whether s has the shape of a repository accession
func IsAccession(s string) bool {
	return s != "" && accessionPattern.MatchString(s)
}

// RunPath returns the directory holding a run's files on the ENA archive.
//
//	SRR1234567 -> /vol1/fastq/SRR123/007/SRR1234567
func RunPath(accession string) (string, error) {
	if !IsAccession(accession) {
		return "", goerr.New("invalid run accession",
			goerr.V("accession", accession),
			goerr.T(types.ErrTagParse),
		)
	}

	last := accession[len(accession)-1:]
	return path.Join("/vol1/fastq", accession[:6], "00"+last, accession), nil
}

// MatchLabel compares a table label against a target the way GEO labels are
// matched: trimmed and case-insensitive
func MatchLabel(s, target string) bool {
	return strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(target))
}
