package query

// Window converts a 1-based page and a page size into the LIMIT/OFFSET pair
// for the page query.
func Window(page, pageSize int) (limit, offset int) {
	return pageSize, (page - 1) * pageSize
}

// TotalPages returns ceil(total/pageSize), 0 when total is 0. A page beyond
// the last one is not an error: the page query simply returns no rows and
// the envelope reports the true total.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
