package raster

import (
	"fmt"
	"sync"
)

// Mem is an in-memory raster band. Data is row-major.
type Mem struct {
	grid Grid
	Data []float64
}

// NewMem creates a band filled with the grid nodata.
func NewMem(g Grid) *Mem {
	res := &Mem{grid: g, Data: make([]float64, g.Len())}
	res.Fill(g.NoData)
	return res
}

// Grid returns the grid of the band.
func (m *Mem) Grid() Grid {
	return m.grid
}

// Fill sets every pixel to v.
func (m *Mem) Fill(v float64) {
	for i := range m.Data {
		m.Data[i] = v
	}
}

// At returns the value of a pixel. Positions outside of the grid are nodata.
func (m *Mem) At(col, row int) float64 {
	if !m.grid.Contains(col, row) {
		return m.grid.NoData
	}
	return m.Data[m.grid.Index(col, row)]
}

// Set stores the value of a pixel. Positions outside of the grid are
// ignored.
func (m *Mem) Set(col, row int, v float64) {
	if !m.grid.Contains(col, row) {
		return
	}
	m.Data[m.grid.Index(col, row)] = v
}

// Valid reports if a pixel is inside the grid and is not nodata.
func (m *Mem) Valid(col, row int) bool {
	if !m.grid.Contains(col, row) {
		return false
	}
	return !m.grid.IsNoData(m.Data[m.grid.Index(col, row)])
}

// Clone returns a deep copy of the band.
func (m *Mem) Clone() *Mem {
	res := &Mem{grid: m.grid, Data: make([]float64, len(m.Data))}
	copy(res.Data, m.Data)
	return res
}

// Read implements Reader.
func (m *Mem) Read(w Window, buf []float64) error {
	if err := m.check(w, buf); err != nil {
		return err
	}
	for r := range w.Height {
		src := m.grid.Index(w.Col, w.Row+r)
		copy(buf[r*w.Width:(r+1)*w.Width], m.Data[src:src+w.Width])
	}
	return nil
}

// Write implements Writer.
func (m *Mem) Write(w Window, buf []float64) error {
	if err := m.check(w, buf); err != nil {
		return err
	}
	for r := range w.Height {
		dst := m.grid.Index(w.Col, w.Row+r)
		copy(m.Data[dst:dst+w.Width], buf[r*w.Width:(r+1)*w.Width])
	}
	return nil
}

// Close implements Dataset.
func (m *Mem) Close() error {
	return nil
}

func (m *Mem) check(w Window, buf []float64) error {
	if w.Col < 0 || w.Row < 0 ||
		w.Col+w.Width > m.grid.Width || w.Row+w.Height > m.grid.Height {
		return fmt.Errorf("window %+v is outside of %dx%d grid",
			w, m.grid.Width, m.grid.Height)
	}
	if len(buf) < w.Len() {
		return fmt.Errorf("buffer of %d is smaller than window of %d",
			len(buf), w.Len())
	}
	return nil
}

// ReadAll loads a whole band into memory.
func ReadAll(r Reader) (*Mem, error) {
	g := r.Grid()
	res := &Mem{grid: g, Data: make([]float64, g.Len())}
	if err := r.Read(g.Full(), res.Data); err != nil {
		return nil, err
	}
	return res, nil
}

// WriteAll stores a band tile by tile.
func WriteAll(w Writer, m *Mem, tile int) error {
	if !w.Grid().SameShape(m.Grid()) {
		return fmt.Errorf("cannot write %dx%d band into %dx%d raster",
			m.grid.Width, m.grid.Height, w.Grid().Width, w.Grid().Height)
	}
	buf := make([]float64, 0)
	for win := range m.grid.Windows(tile) {
		if cap(buf) < win.Len() {
			buf = make([]float64, win.Len())
		}
		buf = buf[:win.Len()]
		if err := m.Read(win, buf); err != nil {
			return err
		}
		if err := w.Write(win, buf); err != nil {
			return err
		}
	}
	return nil
}

// MemStore keeps rasters in memory by path. It is safe for concurrent use.
type MemStore struct {
	mu    sync.Mutex
	files map[string]*Mem
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string]*Mem)}
}

// Open implements Store.
func (s *MemStore) Open(path string) (Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("raster %s does not exist", path)
	}
	return m, nil
}

// Create implements Store.
func (s *MemStore) Create(path string, g Grid) (Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := NewMem(g)
	s.files[path] = m
	return m, nil
}

// Put stores a band under path.
func (s *MemStore) Put(path string, m *Mem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = m
}

// Len returns the number of stored rasters.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
