package domain

import "slices"

// SortRows orders rows in place by the given keys. Rows missing a key sort first.
// The first comparison error aborts sorting and is returned.
func SortRows(rows []Row, orders []Order) error {
	var sortErr error
	slices.SortStableFunc(rows, func(a, b Row) int {
		for _, o := range orders {
			av, bv := a[o.Column], b[o.Column]
			var n int
			switch {
			case av == nil && bv == nil:
				n = 0
			case av == nil:
				n = -1
			case bv == nil:
				n = 1
			default:
				var err error
				n, err = Compare(av, bv)
				if err != nil {
					if sortErr == nil {
						sortErr = err
					}
					return 0
				}
			}
			if o.Desc {
				n = -n
			}
			if n != 0 {
				return n
			}
		}
		return 0
	})
	return sortErr
}

// FirstValue applies where, order and limit to rows and returns column from the first survivor.
func FirstValue(rows []Row, q Query) (any, bool, error) {
	matched := make([]Row, 0, len(rows))
	for _, r := range rows {
		ok, err := MatchAll(r, q.Where)
		if err != nil {
			return nil, false, err
		}
		if ok {
			matched = append(matched, r)
		}
	}
	if err := SortRows(matched, q.OrderBy); err != nil {
		return nil, false, err
	}
	if len(matched) == 0 {
		return nil, false, nil
	}
	v, ok := matched[0][q.Column]
	return v, ok, nil
}
