// Package serialization saves and loads named float64 tensors in the .ndar format.
//
//	Format Structure:
//	  [4 bytes: Magic "NDAR"]
//	  [4 bytes: Version (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata]
//	  [32 bytes: SHA-256 of the data section]
//	  [Tensor data: row-major float64 LE, in header order]
//
// Tensors are written in sorted name order so the same state produces the same bytes.
//
// Example usage:
//
//	if err := serialization.SaveFile("weights.ndar", tensors, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	reader, err := serialization.OpenFile("weights.ndar", serialization.ReaderOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tensors, err := reader.ReadAll(arena, tensor.HostDevice)
package serialization
