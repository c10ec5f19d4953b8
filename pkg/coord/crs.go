package coord

import (
	"fmt"
	"sync"

	"github.com/wroge/wgs84"
)

type crsPair struct {
	from int
	to   int
}

var (
	transformMu    sync.Mutex
	transformFuncs = map[crsPair]wgs84.Func{}
)

// transform converts a single point between two EPSG codes. Transformation
// functions are built once per (from, to) pair and reused.
func transform(from, to int, x, y, z float64) (float64, float64, float64, error) {
	fn, err := transformFunc(from, to)
	if err != nil {
		return 0, 0, 0, err
	}
	a, b, c := fn(x, y, z)
	return a, b, c, nil
}

func transformFunc(from, to int) (wgs84.Func, error) {
	pair := crsPair{from: from, to: to}

	transformMu.Lock()
	defer transformMu.Unlock()

	if fn, ok := transformFuncs[pair]; ok {
		return fn, nil
	}

	repo := wgs84.EPSG()
	if repo.Code(from) == nil {
		return nil, fmt.Errorf("unsupported EPSG code %d", from)
	}
	if repo.Code(to) == nil {
		return nil, fmt.Errorf("unsupported EPSG code %d", to)
	}

	fn := repo.Transform(from, to)
	transformFuncs[pair] = fn
	return fn, nil
}
