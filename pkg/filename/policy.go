package filename

import (
	"fmt"
	"sync/atomic"
	"time"
)

const (
	DefaultPrefix    = "img_"
	DefaultExtension = ".jpg"

	// fixed width fields keep lexicographic order equal to capture order
	datedLayout   = "20060102_150405"
	counterDigits = 6
)

// Policy names capture files. Dated names are used while wall clock
// time can be trusted, numbered names otherwise.
type Policy struct {
	prefix  string
	ext     string
	counter uint64
}

func New() *Policy {
	return NewWithAffixes(DefaultPrefix, DefaultExtension)
}

func NewWithAffixes(prefix, ext string) *Policy {
	return &Policy{prefix: prefix, ext: ext}
}

func (p *Policy) Dated(now time.Time) string {
	return p.dated(now, p.ext)
}

func (p *Policy) dated(now time.Time, ext string) string {
	return fmt.Sprintf("%s%s%s", p.prefix, now.Format(datedLayout), ext)
}

// Numbered hands out the next counter value. The counter lives for the
// process lifetime only and starts again from 1 on restart.
func (p *Policy) Numbered() string {
	return p.numbered(p.ext)
}

func (p *Policy) numbered(ext string) string {
	n := atomic.AddUint64(&p.counter, 1)
	return fmt.Sprintf("%s%0*d%s", p.prefix, counterDigits, n, ext)
}

func (p *Policy) Name(now time.Time, timeTrusted bool) string {
	return p.NameAs(now, timeTrusted, p.ext)
}

// NameAs is Name with ext in place of the policy's extension, for files
// which are not in the policy's format.
func (p *Policy) NameAs(now time.Time, timeTrusted bool, ext string) string {
	if timeTrusted {
		return p.dated(now, ext)
	}
	return p.numbered(ext)
}
