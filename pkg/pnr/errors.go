package pnr

import "fmt"

// UnsupportedGDSError is returned when the requested source is not one of the
// recognized systems. No partial result accompanies it.
type UnsupportedGDSError struct {
	Source string
}

func (e *UnsupportedGDSError) Error() string {
	return fmt.Sprintf("unsupported GDS source %q (expected amadeus, sabre or galileo)", e.Source)
}

// EmptyInputError is returned when the PNR text is blank or whitespace only.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "PNR text is empty"
}

// HeaderNotFoundError is returned when no line of the input could be resolved
// to a record locator. A parse without a PNR code is meaningless, so this is
// the only extraction failure treated as fatal.
type HeaderNotFoundError struct {
	Source GDS
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("no PNR record locator found in %s text", e.Source)
}
