package recfmt

import "github.com/rs/zerolog"

// CodecOpts configures the decoders. The zero value is ready to use.
type CodecOpts struct {
	// Logger receives a debug entry for every locally-recovered skip
	// (CSV column-count mismatch, JSON entry with a blank key). Nil
	// disables logging. There is no package-global logger; the sink is
	// always injected.
	Logger *zerolog.Logger
}

func (o CodecOpts) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}
