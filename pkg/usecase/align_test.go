package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/usecase"
)

// MockAligner is a mock implementation of Aligner
type MockAligner struct {
	mu     sync.Mutex
	jobs   []*model.AlignJob
	failOn map[string]bool
}

func (m *MockAligner) Align(ctx context.Context, job *model.AlignJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	if m.failOn[job.ReadFile] {
		return errors.New("aligner exited with status 1")
	}
	return nil
}

func (m *MockAligner) Jobs() []*model.AlignJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := append([]*model.AlignJob{}, m.jobs...)
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ReadPath < jobs[j].ReadPath })
	return jobs
}

func touch(t *testing.T, path string) {
	t.Helper()
	gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0755)).Required()
	gt.NoError(t, os.WriteFile(path, []byte("@r\nA\n+\nI\n"), 0644)).Required()
}

func createReadTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	touch(t, filepath.Join(root, "top.fq.gz"))
	touch(t, filepath.Join(root, "GSM0000001", "SRR0000001.fq.gz"))
	touch(t, filepath.Join(root, "GSM0000001", "nested", "deep", "SRR0000002.trimmed.fq.gz"))
	touch(t, filepath.Join(root, "GSM0000002", "SRR0000003.fastq.gz"))
	touch(t, filepath.Join(root, "GSM0000002", "notes.txt"))
	return root
}

func TestAlignUseCase_AlignDirectories(t *testing.T) {
	ctx := context.Background()
	root := createReadTree(t)
	aligner := &MockAligner{}

	uc, err := usecase.NewAlign(aligner, "genomes/hg38", usecase.WithProcesses(2))
	gt.NoError(t, err).Required()

	before, err := os.Getwd()
	gt.NoError(t, err)

	gt.NoError(t, uc.AlignDirectories(ctx, []string{root}))

	after, err := os.Getwd()
	gt.NoError(t, err)
	gt.Equal(t, after, before)

	jobs := aligner.Jobs()
	gt.Equal(t, len(jobs), 3)

	absGenome, err := filepath.Abs("genomes/hg38")
	gt.NoError(t, err)

	expected := map[string]string{
		filepath.Join(root, "GSM0000001", "SRR0000001.fq.gz"):                           "SRR0000001",
		filepath.Join(root, "GSM0000001", "nested", "deep", "SRR0000002.trimmed.fq.gz"): "SRR0000002",
		filepath.Join(root, "top.fq.gz"):                                                "top",
	}
	for _, job := range jobs {
		prefix, ok := expected[job.ReadPath]
		gt.True(t, ok)
		gt.Equal(t, job.Prefix, prefix)
		gt.Equal(t, job.Dir, filepath.Dir(job.ReadPath))
		gt.Equal(t, job.ReadFilesCommand, "zcat")
		gt.Equal(t, job.Genome, absGenome)
	}
}

func TestAlignUseCase_FailureDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	root := createReadTree(t)
	aligner := &MockAligner{failOn: map[string]bool{"SRR0000001.fq.gz": true}}

	uc, err := usecase.NewAlign(aligner, "/genomes/hg38", usecase.WithProcesses(1))
	gt.NoError(t, err).Required()

	err = uc.AlignDirectories(ctx, []string{root})
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("aligner exited")

	// every discovered file was still dispatched
	gt.Equal(t, len(aligner.Jobs()), 3)
}

func TestAlignUseCase_NoFiles(t *testing.T) {
	aligner := &MockAligner{}
	uc, err := usecase.NewAlign(aligner, "/genomes/hg38")
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.AlignDirectories(context.Background(), []string{t.TempDir()}))
	gt.Equal(t, len(aligner.Jobs()), 0)
}

func TestAlignUseCase_CustomPattern(t *testing.T) {
	root := createReadTree(t)
	aligner := &MockAligner{}
	uc, err := usecase.NewAlign(aligner, "/genomes/hg38",
		usecase.WithReadPattern("*.fastq.gz"),
		usecase.WithThreads(4),
	)
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.AlignDirectories(context.Background(), []string{root}))
	jobs := aligner.Jobs()
	gt.Equal(t, len(jobs), 1)
	gt.Equal(t, jobs[0].Prefix, "SRR0000003")
	gt.Equal(t, jobs[0].Threads, 4)
}

func TestAlignUseCase_AlignFile(t *testing.T) {
	aligner := &MockAligner{}
	uc, err := usecase.NewAlign(aligner, "/genomes/hg38")
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.AlignFile(context.Background(), "/data/run/reads.fq"))
	jobs := aligner.Jobs()
	gt.Equal(t, len(jobs), 1)
	gt.Equal(t, jobs[0].ReadFilesCommand, "cat")
	gt.Equal(t, jobs[0].Prefix, "reads")
	gt.Equal(t, jobs[0].Dir, "/data/run")
}

// MockInspector is a mock implementation of AlignmentInspector
type MockInspector struct {
	mu    sync.Mutex
	paths []string
	fail  bool
}

func (m *MockInspector) Inspect(ctx context.Context, path string) (*model.AlignmentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
	if m.fail {
		return nil, errors.New("failed to read BAM header")
	}
	return &model.AlignmentSummary{Path: path, Records: 10, Mapped: 9}, nil
}

func TestAlignUseCase_Inspect(t *testing.T) {
	t.Run("inspects the sorted BAM beside the read file", func(t *testing.T) {
		inspector := &MockInspector{}
		uc, err := usecase.NewAlign(&MockAligner{}, "/genomes/hg38", usecase.WithInspector(inspector))
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.AlignFile(context.Background(), "/data/run/SRR0000001.fq.gz"))
		gt.Equal(t, inspector.paths, []string{"/data/run/SRR0000001Aligned.sortedByCoord.out.bam"})
	})

	t.Run("unreadable BAM fails the file", func(t *testing.T) {
		inspector := &MockInspector{fail: true}
		uc, err := usecase.NewAlign(&MockAligner{}, "/genomes/hg38", usecase.WithInspector(inspector))
		gt.NoError(t, err).Required()

		gt.Error(t, uc.AlignFile(context.Background(), "/data/run/SRR0000001.fq.gz"))
	})

	t.Run("failed alignment is not inspected", func(t *testing.T) {
		inspector := &MockInspector{}
		aligner := &MockAligner{failOn: map[string]bool{"SRR0000001.fq.gz": true}}
		uc, err := usecase.NewAlign(aligner, "/genomes/hg38", usecase.WithInspector(inspector))
		gt.NoError(t, err).Required()

		gt.Error(t, uc.AlignFile(context.Background(), "/data/run/SRR0000001.fq.gz"))
		gt.Equal(t, len(inspector.paths), 0)
	})
}

func TestNewAlign_RequiresGenome(t *testing.T) {
	_, err := usecase.NewAlign(&MockAligner{}, "")
	gt.Error(t, err)
}

func TestFindReadFiles(t *testing.T) {
	first := createReadTree(t)
	second := t.TempDir()
	touch(t, filepath.Join(second, "b", "SRR0000009.fq.gz"))

	files, err := usecase.FindReadFiles([]string{first, second}, "*.fq.gz")
	gt.NoError(t, err)
	gt.Equal(t, len(files), 4)
	gt.Equal(t, files[3], filepath.Join(second, "b", "SRR0000009.fq.gz"))
}
