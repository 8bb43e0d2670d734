// Package asset implements the texture asset format and loader from
// spec.md §6: a fixed-size Header followed by one block per mip chain.
// Loading is the two-phase protocol carried over from
// original_source/FerrumCore/FeCore/Assets/Asset.h and IAssetLoader.h
// (header read, then one block-read per mip chain, then GPU upload
// assembly) realized over streamio for the reads and copyqueue for the
// uploads.
package asset
