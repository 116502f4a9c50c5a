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
	"fmt"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	prettytable "github.com/tatsushid/go-prettytable"

	"github.com/microbiomics/taxtab/taxtab/cmd/kreport"
)

var reportInfoCmd = &cobra.Command{
	Use:   "report-info",
	Short: "Print summary information of classification reports",
	Long: `Print summary information of classification reports

For every report: the number of rows, the rank codes present, the
total number of fragments (classified plus unclassified top-level
counts) and the unclassified fraction.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		outFile := getFlagString(cmd, "out-file")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(strings.ToLower(outFile), ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		tbl, err := prettytable.NewTable(
			prettytable.Column{Header: "file"},
			prettytable.Column{Header: "rows", AlignRight: true},
			prettytable.Column{Header: "fragments", AlignRight: true},
			prettytable.Column{Header: "unclassified", AlignRight: true},
			prettytable.Column{Header: "ranks"},
		)
		checkError(err)
		tbl.Separator = "  "

		for _, file := range files {
			rows, err := kreport.ReadReport(file, opt.NumCPUs, 1000)
			if err != nil {
				log.Warningf("skipping report: %s: %s", file, err)
				continue
			}

			var total, unclassified int
			ranks := make([]string, 0, 16)
			seen := make(map[string]interface{}, 16)
			for _, row := range rows {
				switch row.Rank[0] {
				case 'U':
					unclassified += row.Count
					total += row.Count
				case 'R':
					if len(row.Rank) == 1 {
						total += row.Count
					}
				}
				if _, ok := seen[row.Rank]; !ok {
					seen[row.Rank] = nil
					ranks = append(ranks, row.Rank)
				}
			}

			var pUnclassified string
			if total > 0 {
				pUnclassified = fmt.Sprintf("%.2f%%", float64(unclassified)/float64(total)*100)
			} else {
				pUnclassified = "-"
			}

			tbl.AddRow(
				file,
				humanize.Comma(int64(len(rows))),
				humanize.Comma(int64(total)),
				pUnclassified,
				strings.Join(ranks, ","),
			)
		}

		outfh.Write(tbl.Bytes())
	},
}

func init() {
	RootCmd.AddCommand(reportInfoCmd)

	reportInfoCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout, suffix .gz for gzipped out)`)
}
