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
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"

	"github.com/microbiomics/taxtab/taxtab/cmd/kreport"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Pad taxonomy strings of a taxonomy table to uniform depth",
	Long: `Pad taxonomy strings of a taxonomy table to uniform depth

The input is a two-column tab-delimited taxonomy table (feature-id,
Taxon) as written by "taxtab table", or by other tools as long as the
taxonomy string is in the second column. Every taxonomy string with
fewer than seven levels is padded with "unclassified" placeholders
down to species depth; strings already at seven or more levels pass
through unchanged, so filling an already-filled table is a no-op.

Examples:
  1. taxtab fill taxonomy.tsv -o taxonomy.filled.tsv
  2. zcat taxonomy.tsv.gz | taxtab fill - -o -
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		outFile := getFlagString(cmd, "out-file")
		fillSep := getFlagString(cmd, "fill-sep")
		rankPrefix := !getFlagBool(cmd, "no-rank-prefix")
		noHeaderRow := getFlagBool(cmd, "no-header-row")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		if len(files) != 1 {
			checkError(errors.New("exactly one input file needed (or - for stdin)"))
		}
		file := files[0]

		infh, err := xopen.Ropen(file)
		checkError(errors.Wrap(err, file))
		defer infh.Close()

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(strings.ToLower(outFile), ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		first := true
		var n int
		for {
			line, err := infh.ReadString('\n')
			if line != "" {
				row := strings.TrimRight(line, "\r\n")
				if row != "" {
					if first && !noHeaderRow {
						outfh.WriteString(row + "\n")
					} else {
						items := strings.SplitN(row, "\t", 2)
						if len(items) < 2 {
							checkError(errors.Errorf("invalid taxonomy table row: %s", row))
						}
						outfh.WriteString(items[0] + "\t" + kreport.FillRankGaps(items[1], fillSep, rankPrefix) + "\n")
						n++
					}
					first = false
				}
			}
			if err != nil {
				if err == io.EOF {
					break
				}
				checkError(errors.Wrap(err, file))
			}
		}

		if opt.Verbose {
			log.Infof("%d taxonomy records saved to %s", n, outFile)
		}
	},
}

func init() {
	RootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout, suffix .gz for gzipped out)`)
	fillCmd.Flags().StringP("fill-sep", "", kreport.DefaultTaxonomySep, "level separator of taxonomy strings")
	fillCmd.Flags().BoolP("no-rank-prefix", "", false, `pad with bare "unclassified" instead of "<rank>__unclassified"`)
	fillCmd.Flags().BoolP("no-header-row", "H", false, "input has no header row")
}
