package filename_test

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tauraamui/stilldaemon/pkg/filename"
)

func TestDatedNameEmbedsTimestampToTheSecond(t *testing.T) {
	is := is.New(t)

	p := filename.New()
	now := time.Date(2021, 3, 7, 9, 5, 2, 999, time.UTC)
	is.Equal(p.Dated(now), "img_20210307_090502.jpg")
}

func TestDatedNamesWithinSameSecondCollide(t *testing.T) {
	is := is.New(t)

	p := filename.New()
	now := time.Date(2021, 3, 7, 9, 5, 2, 0, time.UTC)
	is.Equal(p.Dated(now), p.Dated(now.Add(500*time.Millisecond)))
}

func TestDatedNamesSortChronologically(t *testing.T) {
	is := is.New(t)

	p := filename.New()
	base := time.Date(2021, 12, 31, 23, 59, 58, 0, time.UTC)
	var names []string
	for i := 0; i < 5; i++ {
		names = append(names, p.Dated(base.Add(time.Duration(i)*time.Second)))
	}
	is.True(sort.StringsAreSorted(names))
}

func TestNumberedNamesIncreaseMonotonically(t *testing.T) {
	is := is.New(t)

	p := filename.New()
	is.Equal(p.Numbered(), "img_000001.jpg")
	is.Equal(p.Numbered(), "img_000002.jpg")

	var names []string
	for i := 0; i < 20; i++ {
		names = append(names, p.Numbered())
	}
	is.True(sort.StringsAreSorted(names))
}

func TestNumberedNamesAreUniqueAcrossGoroutines(t *testing.T) {
	is := is.New(t)

	p := filename.New()
	mu := sync.Mutex{}
	seen := map[string]bool{}
	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := p.Numbered()
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	is.Equal(len(seen), 50)
}

func TestNameChoosesByTimeTrust(t *testing.T) {
	is := is.New(t)

	p := filename.NewWithAffixes("snap-", ".jpeg")
	now := time.Date(2021, 3, 7, 9, 5, 2, 0, time.UTC)
	is.Equal(p.Name(now, true), "snap-20210307_090502.jpeg")
	is.Equal(p.Name(now, false), "snap-000001.jpeg")
}

func TestNameAsSharesCounterWithName(t *testing.T) {
	is := is.New(t)

	p := filename.New()
	now := time.Date(2021, 3, 7, 9, 5, 2, 0, time.UTC)
	is.Equal(p.Name(now, false), "img_000001.jpg")
	is.Equal(p.NameAs(now, false, ".rgb"), "img_000002.rgb")
	is.Equal(p.NameAs(now, true, ".gray"), "img_20210307_090502.gray")
}
