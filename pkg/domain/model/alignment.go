package model

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Default alignment parameters
const (
	DefaultAligner      = "STAR"
	DefaultReadPattern  = "*.fq.gz"
	DefaultThreads      = 8
	DefaultProcesses    = 8
	MultimapLimit       = 20
	DecompressCommand   = "zcat"
	PassthroughCommand  = "cat"
	compressedExtension = "gz"

	// SortedBAMSuffix is appended to the prefix of the coordinate sorted BAM
	SortedBAMSuffix = "Aligned.sortedByCoord.out.bam"
)

// SAMAttributes are the attributes written to every BAM record
var SAMAttributes = []string{"NH", "HI", "AS", "nM", "MD"}

// AlignJob describes one aligner invocation for one read file
type AlignJob struct {
	ReadPath         string // Path of the read file as discovered
	Dir              string // Working directory of the aligner process
	ReadFile         string // Read file name relative to Dir
	Prefix           string // Output file name prefix
	Genome           string // Genome index directory
	ReadFilesCommand string // zcat or cat
	Threads          int    // Threads per aligner process
}

// NewAlignJob derives an AlignJob from a read file path. The output prefix is
// the file name up to its first dot.
func NewAlignJob(readPath, genome string, threads int) *AlignJob {
	if threads <= 0 {
		threads = DefaultThreads
	}

	file := filepath.Base(readPath)
	prefix, _, _ := strings.Cut(file, ".")

	cmd := PassthroughCommand
	if strings.HasSuffix(file, compressedExtension) {
		cmd = DecompressCommand
	}

	return &AlignJob{
		ReadPath:         readPath,
		Dir:              filepath.Dir(readPath),
		ReadFile:         file,
		Prefix:           prefix,
		Genome:           genome,
		ReadFilesCommand: cmd,
		Threads:          threads,
	}
}

// Args returns the aligner command line, excluding the binary itself
func (j *AlignJob) Args() []string {
	args := []string{
		"--runMode", "alignReads",
		"--runThreadN", strconv.Itoa(j.Threads),
		"--outFilterMultimapNmax", strconv.Itoa(MultimapLimit),
		"--outFileNamePrefix", j.Prefix,
		"--genomeDir", j.Genome,
		"--readFilesIn", j.ReadFile,
		"--readFilesCommand", j.ReadFilesCommand,
		"--outSAMtype", "BAM", "SortedByCoordinate",
		"--outSAMattributes",
	}
	return append(args, SAMAttributes...)
}

// OutputBAM returns the path of the sorted BAM the aligner writes for this job
func (j *AlignJob) OutputBAM() string {
	return filepath.Join(j.Dir, j.Prefix+SortedBAMSuffix)
}

// AlignmentSummary describes a finished BAM file
type AlignmentSummary struct {
	Path       string
	SortOrder  string
	References int
	Records    int64
	Mapped     int64
}
