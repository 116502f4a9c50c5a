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
	"io/ioutil"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Manifest maps sample -> bin -> report file. Relative report paths are
// resolved against the manifest's directory.
type Manifest struct {
	Samples map[string]map[string]string `yaml:"samples"`
}

// reportTask is one report to process, with its sample/bin identity.
type reportTask struct {
	Sample string
	Bin    string
	File   string
}

func readManifest(file string) (*Manifest, error) {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to read manifest file: %s", file)
	}

	m := &Manifest{}
	if err = yaml.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, "fail to unmarshal manifest file: %s", file)
	}
	if len(m.Samples) == 0 {
		return nil, errors.Errorf("no samples in manifest file: %s", file)
	}
	return m, nil
}

// tasks flattens the manifest into report tasks, samples and bins in
// lexical order.
func (m *Manifest) tasks(dir string) []reportTask {
	samples := make([]string, 0, len(m.Samples))
	for sample := range m.Samples {
		samples = append(samples, sample)
	}
	sort.Strings(samples)

	tasks := make([]reportTask, 0, len(samples))
	for _, sample := range samples {
		bins := make([]string, 0, len(m.Samples[sample]))
		for bin := range m.Samples[sample] {
			bins = append(bins, bin)
		}
		sort.Strings(bins)

		for _, bin := range bins {
			file := m.Samples[sample][bin]
			if !filepath.IsAbs(file) {
				file = filepath.Join(dir, file)
			}
			tasks = append(tasks, reportTask{Sample: sample, Bin: bin, File: file})
		}
	}
	return tasks
}

// taskFromPath infers sample and bin identity from a report path laid
// out as <...>/<sample>/<bin>.report.txt; for flat files the base name
// serves as both.
func taskFromPath(file string) reportTask {
	base := trimReportSuffix(filepath.Base(file))
	parent := filepath.Base(filepath.Dir(file))
	if parent == "." || parent == string(filepath.Separator) {
		parent = base
	}
	return reportTask{Sample: parent, Bin: base, File: file}
}
