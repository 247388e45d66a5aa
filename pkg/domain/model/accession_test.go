package model_test

import (
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/domain/types"
)

func TestIsAccession(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "run accession", input: "SRR1234567", expected: true},
		{name: "sample accession", input: "GSM0000001", expected: true},
		{name: "experiment accession", input: "SRX0042000", expected: true},
		{name: "too few digits", input: "GSM12345", expected: false},
		{name: "too many digits", input: "SRR12345678", expected: false},
		{name: "space in prefix", input: "GS 1234567", expected: false},
		{name: "letters in digits", input: "SRR12345A7", expected: false},
		{name: "empty", input: "", expected: false},
		{name: "label text", input: "Sample", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, model.IsAccession(tt.input), tt.expected)
		})
	}
}

func TestRunPath(t *testing.T) {
	tests := []struct {
		accession string
		expected  string
	}{
		{accession: "ACC0001234", expected: "/vol1/fastq/ACC000/004/ACC0001234"},
		{accession: "SRR1234567", expected: "/vol1/fastq/SRR123/007/SRR1234567"},
		{accession: "ERR0000000", expected: "/vol1/fastq/ERR000/000/ERR0000000"},
		{accession: "DRR9876541", expected: "/vol1/fastq/DRR987/001/DRR9876541"},
	}

	for _, tt := range tests {
		t.Run(tt.accession, func(t *testing.T) {
			got, err := model.RunPath(tt.accession)
			gt.NoError(t, err)
			gt.Equal(t, got, tt.expected)
		})
	}

	t.Run("rejects malformed accession", func(t *testing.T) {
		_, err := model.RunPath("SRR12")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagParse))
	})
}

func TestMatchLabel(t *testing.T) {
	gt.True(t, model.MatchLabel("  Library strategy ", "library strategy"))
	gt.True(t, model.MatchLabel("SRA", "sra"))
	gt.False(t, model.MatchLabel("Library source", "library strategy"))
}
