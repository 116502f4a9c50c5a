// Copyright © 2023-2026 The taxtab Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"

	"github.com/microbiomics/taxtab/taxtab/cmd/kreport"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Build abundance and taxonomy tables from classification reports",
	Long: `Build abundance and taxonomy tables from classification reports

Input:
  1. Kraken2-style report files (tab-delimited, no header, six columns:
     coverage percent, fragments covered, fragments assigned directly,
     rank code, taxon id, name), plain or gzipped.
  2. Reports are given as positional arguments, via -i/--infile-list,
     via -I/--in-dir with -r/--file-pattern, or via -M/--manifest.
  3. Sample and bin identities come from the manifest when given,
     otherwise from the path: <...>/<sample>/<bin>.report.txt. Flat
     files use the base name as both sample and bin.

Manifest format (YAML):
  samples:
    sampleA:
      bin1: sampleA/bin1.report.txt
      bin2: sampleA/bin2.report.txt
    sampleB:
      bin1: sampleB/bin1.report.txt

Method:
  1. Every report is parsed into its taxon rows and rebuilt into a
     classification tree; fragment-count gaps between a taxon and its
     children are absorbed by synthetic "unclassified" children, so
     counts are conserved down the tree.
  2. Leaves of standard-rank parents are flattened into per-bin counts,
     bins of one sample are summed, and samples are outer-joined into
     the final table with zeros for missing taxa.
  3. Reports are processed in parallel, one worker per report; a report
     failing to parse is reported and skipped without aborting the
     batch. Merging is sequential after all reports finished.

Output:
  1. <prefix>.abundance.tsv: one row per taxon (feature-id = the "|"-
     joined taxon id path), one column per sample.
  2. <prefix>.taxonomy.tsv: feature-id and its taxonomy string, padded
     to seven levels (domain to species) unless --no-fill is given.

Examples:
  1. From a directory written by the classifier:
       taxtab table -I reports/ -o run1
  2. From a manifest:
       taxtab table -M manifest.yml -o run1 --gzip
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}
		timeStart := time.Now()
		defer func() {
			if opt.Verbose || opt.Log2File {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		outPrefix := getFlagString(cmd, "out-prefix")
		if outPrefix == "" {
			checkError(errors.New("flag -o/--out-prefix needed"))
		}
		outPrefix = expandPath(outPrefix)

		gzipped := getFlagBool(cmd, "gzip")
		noFill := getFlagBool(cmd, "no-fill")
		fillSep := getFlagString(cmd, "fill-sep")
		rankPrefix := !getFlagBool(cmd, "no-rank-prefix")
		chunkSize := getFlagPositiveInt(cmd, "line-chunk-size")

		manifestFile := getFlagString(cmd, "manifest")
		inDir := getFlagString(cmd, "in-dir")
		reFileStr := getFlagString(cmd, "file-pattern")
		reFile, err := regexp.Compile(reFileStr)
		if err != nil {
			checkError(errors.Wrapf(err, "fail to compile regular expression for matching file: %s", reFileStr))
		}

		// ---------------------------------------------------------------
		// input reports

		var tasks []reportTask

		checkError(checkManifestExclusive(manifestFile, inDir, getFlagString(cmd, "infile-list"), len(args)))

		if manifestFile != "" {
			m, err := readManifest(manifestFile)
			checkError(err)
			tasks = m.tasks(filepath.Dir(manifestFile))
		} else {
			var files []string
			if inDir != "" {
				files, err = getFileListFromDir(expandPath(inDir), reFile, opt.NumCPUs)
				checkError(err)
			}
			for _, file := range getFileListFromArgsAndFile(cmd, args, false, "infile-list", true) {
				if isStdin(file) {
					continue
				}
				files = append(files, file)
			}

			tasks = make([]reportTask, 0, len(files))
			for _, file := range files {
				tasks = append(tasks, taskFromPath(file))
			}
		}

		if len(tasks) == 0 {
			checkError(errors.New("no report files given, check -M/--manifest, -I/--in-dir or positional arguments"))
		}

		if opt.Verbose || opt.Log2File {
			log.Infof("taxtab v%s", VERSION)
			log.Info()
			log.Infof("%d report(s) given", len(tasks))
		}

		// ---------------------------------------------------------------
		// per-report parsing and tree building, one worker per report

		showProgress := opt.Verbose && len(tasks) > 1
		var pbs *mpb.Progress
		var bar *mpb.Bar
		var chDuration chan time.Duration
		var doneDuration chan int
		var onDone func(time.Duration)
		if showProgress {
			pbs = mpb.New(mpb.WithWidth(79))
			bar = pbs.AddBar(int64(len(tasks)),
				mpb.BarStyle("[=>-]<+"),
				mpb.PrependDecorators(
					decor.Name("processing report: ", decor.WC{W: len("processing report: "), C: decor.DidentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.EwmaETA(decor.ET_STYLE_GO, 60),
				),
			)

			chDuration = make(chan time.Duration, opt.NumCPUs)
			doneDuration = make(chan int)
			go func() {
				for t := range chDuration {
					bar.Increment()
					bar.DecoratorEwmaUpdate(t)
				}
				doneDuration <- 1
			}()
			onDone = func(t time.Duration) {
				chDuration <- t
			}
		}

		profiles, fails := processReports(tasks, opt.NumCPUs, chunkSize, onDone)

		if showProgress {
			close(chDuration)
			<-doneDuration
			pbs.Wait()
		}

		var nFailed int
		for i, err := range fails {
			if err == nil {
				continue
			}
			nFailed++
			log.Warningf("skipping report of sample %s, bin %s: %s", tasks[i].Sample, tasks[i].Bin, err)
		}
		if nFailed == len(tasks) {
			checkError(errors.Errorf("all %d report(s) failed to parse", len(tasks)))
		}
		if opt.Verbose || opt.Log2File {
			log.Infof("%d of %d report(s) parsed", len(tasks)-nFailed, len(tasks))
		}

		// ---------------------------------------------------------------
		// merging, sequential

		abundance, taxonomy, err := kreport.Aggregate(profiles)
		checkError(err)

		if !noFill {
			taxonomy.FillGaps(fillSep, rankPrefix)
		}

		ext := ".tsv"
		if gzipped {
			ext += ".gz"
		}
		abundanceFile := outPrefix + ".abundance" + ext
		taxonomyFile := outPrefix + ".taxonomy" + ext

		writeAbundanceTable(abundanceFile, abundance, gzipped, opt.CompressionLevel)
		writeTaxonomyTable(taxonomyFile, taxonomy, gzipped, opt.CompressionLevel)

		if opt.Verbose || opt.Log2File {
			log.Infof("%s taxa of %d sample(s) saved to %s",
				humanize.Comma(int64(len(abundance.IDs))), len(abundance.Samples), abundanceFile)
			log.Infof("%s taxonomy records saved to %s",
				humanize.Comma(int64(len(taxonomy.Rows))), taxonomyFile)
		}
	},
}

// processReports parses, rebuilds and flattens all reports, one worker
// per report, at most threads in flight. Profiles and failures are
// indexed by task, so workers never share a slot. onDone, when not nil,
// is called by each worker before it is counted as finished: once
// processReports returns, no further onDone call can happen, and the
// caller may tear down whatever onDone writes to.
func processReports(tasks []reportTask, threads int, chunkSize int, onDone func(time.Duration)) ([]*kreport.Profile, []error) {
	profiles := make([]*kreport.Profile, len(tasks))
	fails := make([]error, len(tasks))

	var wg sync.WaitGroup
	tokens := make(chan int, threads)

	for i, task := range tasks {
		wg.Add(1)
		tokens <- 1

		go func(i int, task reportTask) {
			startTime := time.Now()
			defer func() {
				if onDone != nil {
					onDone(time.Since(startTime))
				}
				wg.Done()
				<-tokens
			}()

			rows, err := kreport.ReadReport(task.File, 1, chunkSize)
			if err != nil {
				fails[i] = errors.Wrap(err, task.File)
				return
			}
			forest, err := kreport.BuildForest(rows)
			if err != nil {
				fails[i] = errors.Wrap(err, task.File)
				return
			}
			profiles[i] = forest.Flatten(task.Sample, task.Bin)
		}(i, task)
	}

	wg.Wait()
	return profiles, fails
}

// checkManifestExclusive rejects mixing -M/--manifest with the other
// input sources, which would otherwise be silently ignored.
func checkManifestExclusive(manifestFile string, inDir string, infileList string, nArgs int) error {
	if manifestFile == "" {
		return nil
	}
	if inDir != "" || infileList != "" || nArgs > 0 {
		return errors.New("flag -M/--manifest replaces the other input sources, drop -I/--in-dir, -i/--infile-list and positional report files")
	}
	return nil
}

func writeAbundanceTable(file string, t *kreport.AbundanceTable, gzipped bool, level int) {
	outfh, gw, w, err := outStream(file, gzipped, level)
	checkError(err)
	defer func() {
		outfh.Flush()
		if gw != nil {
			gw.Close()
		}
		w.Close()
	}()

	outfh.WriteString("feature-id")
	for _, sample := range t.Samples {
		outfh.WriteString("\t" + sample)
	}
	outfh.WriteByte('\n')

	for i, id := range t.IDs {
		outfh.WriteString(id)
		for _, v := range t.Values[i] {
			outfh.WriteString("\t" + strconv.FormatFloat(v, 'f', -1, 64))
		}
		outfh.WriteByte('\n')
	}
}

func writeTaxonomyTable(file string, t *kreport.TaxonomyTable, gzipped bool, level int) {
	outfh, gw, w, err := outStream(file, gzipped, level)
	checkError(err)
	defer func() {
		outfh.Flush()
		if gw != nil {
			gw.Close()
		}
		w.Close()
	}()

	outfh.WriteString("feature-id\tTaxon\n")
	for _, row := range t.Rows {
		outfh.WriteString(row.ID + "\t" + row.Taxon + "\n")
	}
}

func init() {
	RootCmd.AddCommand(tableCmd)

	tableCmd.Flags().StringP("out-prefix", "o", "", `prefix of the two output files, <prefix>.abundance.tsv and <prefix>.taxonomy.tsv (required)`)
	tableCmd.Flags().BoolP("gzip", "z", false, "gzip output files")

	tableCmd.Flags().StringP("manifest", "M", "", "YAML manifest mapping samples and bins to report files")
	tableCmd.Flags().StringP("in-dir", "I", "", "directory containing report files, with sample/bin layout <sample>/<bin>.report.txt")
	tableCmd.Flags().StringP("file-pattern", "r", `\.report\.txt(\.gz)?$`, "regular expression for matching report files in -I/--in-dir")

	tableCmd.Flags().BoolP("no-fill", "", false, "do not pad taxonomy strings to seven levels")
	tableCmd.Flags().StringP("fill-sep", "", kreport.DefaultTaxonomySep, "level separator of taxonomy strings")
	tableCmd.Flags().BoolP("no-rank-prefix", "", false, `pad with bare "unclassified" instead of "<rank>__unclassified"`)

	tableCmd.Flags().IntP("line-chunk-size", "", 1000, "number of report rows sent to a parsing thread at once")
}
