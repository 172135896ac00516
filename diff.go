package starnotify

// DetectNew walks the current stargazers listing in API order and returns
// the ones whose identity key is not yet in known. Each new key is added to
// known as it is seen, so a duplicate identity within a single listing is
// only reported once. Correctness does not depend on the listing order.
func DetectNew(current []Stargazer, known KnownSet) []Stargazer {
	var fresh []Stargazer
	for _, sg := range current {
		key := sg.Key()
		if known.Has(key) {
			continue
		}
		known.Add(key)
		fresh = append(fresh, sg)
	}
	return fresh
}
