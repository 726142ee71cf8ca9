// SPDX-License-Identifier: EPL-2.0

package shardtest

import (
	"github.com/ik5/ppsalign/audio"
	"github.com/ik5/ppsalign/formats/wav"
)

// Registry returns a registry that opens .wav shards.
func Registry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	return reg
}
