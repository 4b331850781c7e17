package core

import (
	"sort"

	"pkgfilehash/internal/types"
)

// SharedFiles reports paths whose content is owned by more than one
// package. Records are grouped by (file, sha256); packages keep the order
// in which they first appear. Records without a digest are ignored.
func SharedFiles(records []types.FileHashRecord) []types.SharedFile {
	type key struct {
		file string
		hash string
	}
	owners := map[key][]string{}
	var order []key
	for _, record := range records {
		if record.SHA256 == nil {
			continue
		}
		k := key{file: record.File, hash: *record.SHA256}
		existing, ok := owners[k]
		if !ok {
			order = append(order, k)
		}
		if containsString(existing, record.Package) {
			continue
		}
		owners[k] = append(existing, record.Package)
	}

	out := []types.SharedFile{}
	for _, k := range order {
		if len(owners[k]) < 2 {
			continue
		}
		out = append(out, types.SharedFile{File: k.file, SHA256: k.hash, Packages: owners[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].SHA256 < out[j].SHA256
	})
	return out
}

func containsString(values []string, value string) bool {
	for _, item := range values {
		if item == value {
			return true
		}
	}
	return false
}
