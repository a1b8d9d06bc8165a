package catalog

// unknownID is assigned to records the API returned without an id.
const unknownID = "unknown"

// Filter walks a raw catalog payload and returns the validated service
// records, preserving input order. A record survives only if it resolves to
// a non-empty name and its first declared endpoint carries a non-empty URL;
// later endpoints are never consulted. Duplicate URLs pass through
// unchanged, deduplication is the reconciler's job.
func Filter(raw *RawCatalog) []ServiceRecord {
	records := raw.Records()
	if len(records) == 0 {
		return nil
	}

	valid := make([]ServiceRecord, 0, len(records))
	for _, record := range records {
		name := ResolveName(record)
		if name == "" {
			continue
		}

		if len(record.OperationalURLs) == 0 {
			continue
		}
		url := record.OperationalURLs[0].URL
		if url == "" {
			continue
		}

		id := record.ID
		if id == "" {
			id = unknownID
		}

		valid = append(valid, ServiceRecord{
			ID:   id,
			Name: name,
			URL:  url,
		})
	}

	return valid
}
