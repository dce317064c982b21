// Package tree models decoded JSON export documents as a sealed variant
// tree and provides the lookups the loaders are built on.
//
// The package has no schema knowledge. It offers:
//   - Parse: order-preserving decoding (field order matters to Find)
//   - Normalize: recursive lowercasing of field names
//   - Find: case-insensitive, depth-first, first-match-wins key search
//   - Text, Int, ExtractInt: scalar coercions that report absence
//     instead of failing
//
// Absent results are never errors. Callers store them as NULL.
package tree
