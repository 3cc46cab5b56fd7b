package cpu

import (
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// MatMulKernel performs batched matrix multiplication.
//
//	a:   [batch..., M, K]
//	b:   [batch..., K, N]
//	dst: [batch..., M, N], contiguous
//
// Batch axes of a and b are already broadcast to dst's batch shape (stride 0 where repeated).
// C[i,j] = Σ_k A[i,k]·B[k,j], accumulated in k order.
func MatMulKernel(dst, a, b View, cfg parallel.Config) {
	rank := len(dst.Shape)
	m, n := dst.Shape[rank-2], dst.Shape[rank-1]
	k := a.Shape[rank-1]
	batchShape := dst.Shape[:rank-2]
	batch := batchShape.NumElements()

	aRow, aCol := a.Strides[rank-2], a.Strides[rank-1]
	bRow, bCol := b.Strides[rank-2], b.Strides[rank-1]

	parallel.ForBatch(batch, m, func(bi, i int) {
		aBase := tensor.StridedOffset(bi, batchShape, a.Strides[:rank-2], a.Offset) + i*aRow
		bBase := tensor.StridedOffset(bi, batchShape, b.Strides[:rank-2], b.Offset)
		out := dst.Data[dst.Offset+(bi*m+i)*n : dst.Offset+(bi*m+i+1)*n]
		for j := range out {
			sum := 0.0
			bPos := bBase + j*bCol
			aPos := aBase
			for kk := 0; kk < k; kk++ {
				sum += a.Data[aPos] * b.Data[bPos]
				aPos += aCol
				bPos += bRow
			}
			out[j] = sum
		}
	}, cfg)
}
