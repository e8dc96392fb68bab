package cli

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type ErrorHandler struct {
	Verbose bool
}

// PrintErr logs err, numbering each error when err combines several.
func (h ErrorHandler) PrintErr(err error) {
	log := zap.S()

	errFmt := "%v"
	if h.Verbose {
		errFmt = "%+v"
	}

	errs := multierr.Errors(err)
	switch len(errs) {
	case 0:
		return
	case 1:
		log.Errorf(errFmt, errs[0])
	default:
		log.Errorf("%d errors:", len(errs))
		for i, err := range errs {
			log.Errorf("[err %d] "+errFmt, i+1, err)
		}
	}
}
