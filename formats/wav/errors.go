package wav

import "errors"

var (
	ErrNotWavFile            = errors.New("not a WAV file")
	ErrOnlyPCM32bitSupported = errors.New("only PCM 32-bit supported")
	ErrUnsupportedWavChunks  = errors.New("unsupported WAV chunks")
	ErrPartialFrame          = errors.New("samples do not fill a whole frame")
)
