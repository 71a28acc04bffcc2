package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/dali-distiller/internal/distiller"
)

// CLIProgressReporter reports extraction progress with a page progress bar
// and log lines written to one output stream.
type CLIProgressReporter struct {
	quiet   bool
	out     io.Writer
	log     *log.Logger
	pageBar *progressbar.ProgressBar
	scanned int
}

// NewCLIProgressReporter creates a reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
		log:   log.New(out, "", log.LstdFlags),
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	c.log.Println("Discovering documentation...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(statementFiles, functionFiles int) {
	if c.quiet {
		return
	}
	c.log.Printf("Found %d statement pages and %d function pages\n", statementFiles, functionFiles)
}

func (c *CLIProgressReporter) OnFileProcessingStart(totalFiles int) {
	if c.quiet {
		return
	}
	c.scanned = 0
	c.pageBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Scanning pages"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pages/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	if c.quiet || c.pageBar == nil {
		return
	}
	c.scanned++
	_ = c.pageBar.Add(1)
}

func (c *CLIProgressReporter) OnEncodingStart() {
	if c.quiet {
		return
	}
	if c.pageBar != nil {
		_ = c.pageBar.Finish()
		c.pageBar = nil
	}
	c.log.Printf("Scanned %d pages, building schemas...\n", c.scanned)
}

func (c *CLIProgressReporter) OnWritingOutputs() {
	if c.quiet {
		return
	}
	c.log.Println("Writing output files...")
}

func (c *CLIProgressReporter) OnComplete(stats *distiller.Stats) {
	if c.quiet {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Extraction complete: SurrealDB %s, %s coverage in %.1fs\n",
		stats.Version, stats.Coverage, stats.Duration.Seconds())
	fmt.Fprintf(c.out, "  Statements: %s\n", formatNumber(stats.Statements))
	fmt.Fprintf(c.out, "  Functions:  %s (%s signatures)\n", formatNumber(stats.Functions), formatNumber(stats.Signatures))
	fmt.Fprintf(c.out, "  Operators:  %s\n", formatNumber(stats.Operators))
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}

	var result []byte
	for i := range len(str) {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	return string(result)
}
