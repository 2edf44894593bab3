package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

// dateFlag is an optional calendar-date flag. The zero value is unset.
type dateFlag struct {
	t   time.Time
	set bool
}

var _ pflag.Value = (*dateFlag)(nil)

func (d *dateFlag) String() string {
	if !d.set {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d *dateFlag) Set(s string) error {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	d.t, d.set = t, true
	return nil
}

func (d *dateFlag) Type() string { return "date" }

// Ptr returns nil when the flag was not given.
func (d *dateFlag) Ptr() *time.Time {
	if !d.set {
		return nil
	}
	t := d.t
	return &t
}

func addDateFlag(fs *pflag.FlagSet, d *dateFlag, usage string) {
	fs.Var(d, "date", usage)
}
