package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
	"github.com/woozymasta/squeeze"
)

// reportRow is one line of the batch CSV report.
type reportRow struct {
	Source       string  `csv:"source"`
	Destination  string  `csv:"destination"`
	Strategy     string  `csv:"strategy"`
	SourceWidth  int     `csv:"source_width"`
	SourceHeight int     `csv:"source_height"`
	Width        int     `csv:"width"`
	Height       int     `csv:"height"`
	SourceBytes  int64   `csv:"source_bytes"`
	Bytes        int     `csv:"bytes"`
	Ratio        float64 `csv:"ratio"`
	Error        string  `csv:"error"`
}

// errDuplicateDestination marks sources whose output name is already taken
// by an earlier source of the same batch.
var errDuplicateDestination = errors.New("duplicate destination")

// batchJob is a unit of work for the pool. index keeps report order stable.
type batchJob struct {
	index int
	req   *squeeze.Request
}

func (e *env) batch(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("batch: no sources given", 2)
	}

	strategy, err := squeeze.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}

	out := c.String("out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	jobs := e.cfg.Jobs
	if c.IsSet("jobs") {
		jobs = c.Int("jobs")
	}
	if jobs < 1 {
		return cli.Exit("batch: --jobs must be at least 1", 2)
	}

	sources := c.Args().Slice()
	rows := make([]reportRow, len(sources))
	queue := make([]batchJob, 0, len(sources))
	owners := make(map[string]string, len(sources))

	var result *multierror.Error
	for i, src := range sources {
		dst := outputPath(out, src)
		if first, ok := owners[dst]; ok {
			err := fmt.Errorf("%s: %w: %s is also written by %s", src, errDuplicateDestination, dst, first)
			rows[i] = reportRow{Source: src, Destination: dst, Strategy: strategy.String(), Error: err.Error()}
			result = multierror.Append(result, err)
			e.logger.Warnw("compress error", "source", src, "error", err)
			continue
		}
		owners[dst] = src

		req, err := e.request(c, strategy, src, dst)
		if err != nil {
			return err
		}
		queue = append(queue, batchJob{index: i, req: req})
	}

	if err := e.runBatch(rows, queue, jobs); err != nil {
		result = multierror.Append(result, err)
	}
	runErr := result.ErrorOrNil()

	if path := c.String("report"); path != "" {
		if err := writeReport(path, rows); err != nil {
			runErr = multierror.Append(runErr, err)
		}
	}

	failed := 0
	for _, row := range rows {
		if row.Error != "" {
			failed++
		}
	}
	e.logger.Infow("batch finished", "strategy", strategy.String(), "images", len(rows), "failed", failed, "jobs", jobs)

	return runErr
}

// runBatch compresses queue on a bounded pool of workers, storing each
// outcome at rows[job.index]. Failures do not stop other jobs; they are
// reported per row and merged into the error.
func (e *env) runBatch(rows []reportRow, queue []batchJob, workers int) error {
	ch := make(chan batchJob)

	var (
		mu     sync.Mutex
		result *multierror.Error
		wg     sync.WaitGroup
	)

	for w := 0; w < min(workers, len(queue)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range ch {
				row, err := e.runJob(job.req)
				rows[job.index] = row
				if err != nil {
					mu.Lock()
					result = multierror.Append(result, fmt.Errorf("%s: %w", job.req.SourcePath, err))
					mu.Unlock()
				}
			}
		}()
	}

	for _, job := range queue {
		ch <- job
	}
	close(ch)
	wg.Wait()

	return result.ErrorOrNil()
}

func (e *env) runJob(req *squeeze.Request) (reportRow, error) {
	row := reportRow{
		Source:   req.SourcePath,
		Strategy: req.Strategy.String(),
	}
	if fs, ok := req.Sink.(*squeeze.FileSink); ok {
		row.Destination = fs.Path
	}
	if st, err := os.Stat(req.SourcePath); err == nil {
		row.SourceBytes = st.Size()
	}

	res, err := e.compress(req)
	if err != nil {
		row.Error = err.Error()
		e.logger.Warnw("compress error", "source", req.SourcePath, "error", err)
		return row, err
	}

	row.SourceWidth, row.SourceHeight = res.SourceWidth, res.SourceHeight
	row.Width, row.Height = res.Width, res.Height
	row.Bytes = res.Size
	if res.Size > 0 {
		row.Ratio = float64(row.SourceBytes) / float64(res.Size)
	}

	return row, nil
}

// outputPath maps a source file to a .jpg name inside dir. Sources differing
// only in directory or extension map to the same name.
func outputPath(dir, source string) string {
	base := filepath.Base(source)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".jpg")
}

func writeReport(path string, rows []reportRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr).ErrorOrNil()
		}
	}()

	if err := gocsv.Marshal(&rows, f); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
