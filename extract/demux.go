// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/ppsalign/demux"
	"github.com/ik5/ppsalign/marker"
	"github.com/ik5/ppsalign/progress"
)

// DefaultDemuxMarkerSkip is the number of raw samples dropped after a
// sentinel in a multiplexed stream.
const DefaultDemuxMarkerSkip = 3

// DemuxResult summarizes a demultiplexing run.
type DemuxResult struct {
	// Outputs is the number of samples written per sink, per mic group.
	Outputs [demux.Groups]int
	// Consumed is the number of raw samples read.
	Consumed int64
}

// Demultiplex feeds the raw stream of src into d until every group used up
// its budget or the shards run out. Sentinels and the markerSkip samples
// after them never reach the demultiplexer. d is not closed.
func Demultiplex(src Source, d *demux.Demux, markerSkip int, rep progress.Reporter) (DemuxResult, error) {
	var res DemuxResult

	st, err := newStream(src)
	if err != nil {
		return res, err
	}
	defer st.Close()

	budget := int64(d.Remaining(0) + d.Remaining(1))
	bar := progress.Or(rep).Bar("demultiplexing", budget)
	defer bar.Done()

	skip := 0
	for !d.Done() {
		_, v, err := st.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		res.Consumed++

		if skip > 0 {
			skip--
			continue
		}
		if marker.IsSentinel(v) {
			skip = markerSkip
			continue
		}

		mic, _ := demux.Route(v)
		n, err := d.Push(v)
		if err != nil {
			return res, fmt.Errorf("demultiplexing: %w", err)
		}
		if n > 0 {
			res.Outputs[mic] += n
			bar.IncrBy(n)
		}
	}

	return res, nil
}
