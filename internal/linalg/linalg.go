/*
Copyright © 2024 the Wannier authors.
This file is part of Wannier.

Wannier is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Wannier is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Wannier.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package linalg provides the complex linear algebra needed for
// Wilson-loop calculations on top of gonum's real LAPACK routines.
//
// gonum does not implement singular value or eigenvalue decompositions
// for complex matrices, so every complex matrix M = A + iB is embedded
// into the real 2n×2n matrix
//
//	⎡A  −B⎤
//	⎣B   A⎦
//
// which is an algebra homomorphism: sums, products and spectral
// functions of the embedding correspond to those of the complex
// matrix. The embedding carries each singular value of M twice, and
// its eigenvalue spectrum is spec(M) ∪ conj(spec(M)).
package linalg

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotSquare indicates a non-square matrix input.
	ErrNotSquare = errors.New("linalg: matrix is not square")

	// ErrEmptyMatrix indicates a zero-dimension matrix input.
	ErrEmptyMatrix = errors.New("linalg: matrix has zero dimension")

	// ErrFactorization indicates that a LAPACK factorization did
	// not converge.
	ErrFactorization = errors.New("linalg: factorization failed")
)

// Embed returns the real 2n×2n embedding [[A,−B],[B,A]] of the
// complex n×n matrix m = A + iB.
func Embed(m *mat.CDense) *mat.Dense {
	r, c := m.Dims()
	e := mat.NewDense(2*r, 2*c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			a, b := real(v), imag(v)
			e.Set(i, j, a)
			e.Set(r+i, c+j, a)
			e.Set(i, c+j, -b)
			e.Set(r+i, j, b)
		}
	}
	return e
}

// unembed recovers the complex n×n matrix from a real 2n×2n matrix
// with (approximate) embedding structure, symmetrizing the two
// redundant blocks to average out numerical noise.
func unembed(e *mat.Dense) *mat.CDense {
	r2, c2 := e.Dims()
	r, c := r2/2, c2/2
	m := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a := 0.5 * (e.At(i, j) + e.At(r+i, c+j))
			b := 0.5 * (e.At(r+i, j) - e.At(i, c+j))
			m.Set(i, j, complex(a, b))
		}
	}
	return m
}

// Identity returns the n×n complex identity matrix.
func Identity(n int) *mat.CDense {
	m := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// UnitaryPart computes the unitary polar factor V·W* of the singular
// value decomposition m = V·Σ·W*, together with the smallest singular
// value of m. The polar factor is obtained from a real SVD of the
// embedding of m; the embedding duplicates each singular value, so the
// smallest real singular value is the smallest singular value of m.
func UnitaryPart(m *mat.CDense) (*mat.CDense, float64, error) {
	r, c := m.Dims()
	if r != c {
		return nil, 0, ErrNotSquare
	}
	if r == 0 {
		return nil, 0, ErrEmptyMatrix
	}
	var svd mat.SVD
	if ok := svd.Factorize(Embed(m), mat.SVDFull); !ok {
		return nil, 0, ErrFactorization
	}
	sv := svd.Values(nil) // sorted descending
	minSV := sv[len(sv)-1]

	var u, v, p mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	p.Mul(&u, v.T())
	return unembed(&p), minSV, nil
}

// UnitaryEigenphases returns the phases φ_j = arg(λ_j)/2π mod 1 of the
// eigenvalues λ_j of the (approximately) unitary complex matrix g,
// sorted ascending.
//
// The eigenvalues of the real embedding of g are spec(g) together with
// its complex conjugates, so each conjugate pair must be attributed to
// the correct side of the spectrum. An embedding eigenvector z = (p;q)
// for eigenvalue λ yields the complex vector x = p + iq, which is an
// eigenvector of g for λ exactly when it is nonzero; within a
// degenerate group the number of eigenvalues belonging to g is the
// complex rank of the matrix of candidate vectors. Real eigenvalues of
// the embedding always appear with exactly twice their multiplicity
// in g.
func UnitaryEigenphases(g *mat.CDense) ([]float64, error) {
	n, c := g.Dims()
	if n != c {
		return nil, ErrNotSquare
	}
	if n == 0 {
		return nil, ErrEmptyMatrix
	}
	var eig mat.Eigen
	if ok := eig.Factorize(Embed(g), mat.EigenRight); !ok {
		return nil, ErrFactorization
	}
	vals := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	scale := 0.0
	for _, v := range vals {
		if a := cmplx.Abs(v); a > scale {
			scale = a
		}
	}
	tol := 1e-8 * scale
	if tol < 1e-14 {
		tol = 1e-14
	}
	groupTol := 1e-6 * scale
	if groupTol < 1e-12 {
		groupTol = 1e-12
	}

	phases := make([]float64, 0, n)
	used := make([]bool, len(vals))

	// Real eigenvalues: half the embedding multiplicity.
	for i, v := range vals {
		if used[i] || math.Abs(imag(v)) > tol {
			continue
		}
		count := 0
		for j := i; j < len(vals); j++ {
			if !used[j] && math.Abs(imag(vals[j])) <= tol &&
				math.Abs(real(vals[j])-real(v)) <= groupTol {
				used[j] = true
				count++
			}
		}
		if count%2 != 0 {
			return nil, ErrFactorization
		}
		phi := phaseOf(complex(real(v), 0))
		for k := 0; k < count/2; k++ {
			phases = append(phases, phi)
		}
	}

	// Conjugate pairs: group the upper half-plane representatives and
	// split each group between λ and conj(λ) by the rank of the
	// candidate eigenvectors.
	for i, v := range vals {
		if used[i] || imag(v) <= tol {
			continue
		}
		var cols [][]complex128
		for j := i; j < len(vals); j++ {
			if !used[j] && imag(vals[j]) > tol && cmplx.Abs(vals[j]-v) <= groupTol {
				used[j] = true
				cols = append(cols, candidateVector(&vecs, n, j))
			}
		}
		m := len(cols)
		a, err := complexRank(cols, tol)
		if err != nil {
			return nil, err
		}
		if a > m {
			a = m
		}
		phi := phaseOf(v)
		for k := 0; k < a; k++ {
			phases = append(phases, phi)
		}
		conjPhi := math.Mod(1-phi, 1)
		for k := a; k < m; k++ {
			phases = append(phases, conjPhi)
		}
	}

	if len(phases) != n {
		return nil, ErrFactorization
	}
	sort.Float64s(phases)
	return phases, nil
}

// phaseOf maps a nonzero complex value to arg(v)/2π in [0, 1).
func phaseOf(v complex128) float64 {
	phi := cmplx.Phase(v) / (2 * math.Pi)
	phi = math.Mod(phi, 1)
	if phi < 0 {
		phi++
	}
	return phi
}

// candidateVector extracts x = p + iq from column j of the embedding
// eigenvector matrix, where p and q are the upper and lower halves.
func candidateVector(vecs *mat.CDense, n, j int) []complex128 {
	x := make([]complex128, n)
	for i := 0; i < n; i++ {
		x[i] = vecs.At(i, j) + 1i*vecs.At(n+i, j)
	}
	return x
}

// complexRank computes the rank of the matrix whose columns are the
// given complex vectors, via the eigenvalues of its Hermitian Gram
// matrix. The Gram matrix is embedded as a real symmetric matrix, so
// each of its eigenvalues appears twice.
func complexRank(cols [][]complex128, tol float64) (int, error) {
	m := len(cols)
	if m == 0 {
		return 0, nil
	}
	gram := make([][]complex128, m)
	maxDiag := 0.0
	for i := range gram {
		gram[i] = make([]complex128, m)
		for j := range gram[i] {
			var s complex128
			for k := range cols[i] {
				s += cmplx.Conj(cols[i][k]) * cols[j][k]
			}
			gram[i][j] = s
		}
		if d := real(gram[i][i]); d > maxDiag {
			maxDiag = d
		}
	}
	if maxDiag <= tol*tol {
		return 0, nil
	}
	if m == 1 {
		return 1, nil
	}

	// Real symmetric embedding of the Hermitian Gram matrix.
	s := mat.NewSymDense(2*m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			a := real(gram[i][j])
			s.SetSym(i, j, a)
			s.SetSym(m+i, m+j, a)
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			s.SetSym(i, m+j, -imag(gram[i][j]))
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(s, false); !ok {
		return 0, ErrFactorization
	}
	ev := es.Values(nil)
	cut := 1e-10 * maxDiag
	count := 0
	for _, v := range ev {
		if v > cut {
			count++
		}
	}
	return count / 2, nil
}
