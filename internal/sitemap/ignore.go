package sitemap

// IgnoreSet holds page URLs that are counted but never probed. It is built
// once and only read afterwards, so checkers running in parallel share it
// without locking.
type IgnoreSet map[string]struct{}

func NewIgnoreSet(urls []string) IgnoreSet {
	s := make(IgnoreSet, len(urls))
	for _, u := range urls {
		s[u] = struct{}{}
	}
	return s
}

// Contains is an exact string match; a nil set contains nothing.
func (s IgnoreSet) Contains(url string) bool {
	_, ok := s[url]
	return ok
}
