// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package interp

import (
	"fmt"
	"math"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/ir"
)

// padMinSentinel stands in for "negative infinity" when padding with
// PadMin (the value a subsequent reduce-max should never pick), without
// risking NaN from further arithmetic the way a true Inf could.
const padMinSentinel = -1e30

// Interpret evaluates t against env. t is assumed already well-typed
// (ir.Validate(t) == nil): Interpret does not re-check well-formedness,
// it reads the same analysis.ShapeType access-axis bookkeeping that
// ir.Analyze already computes statically and trusts it.
func Interpret(t *ir.Term, env Env) (TensorValue, error) {
	switch t.Head {
	case ir.HeadNumberLit:
		return TensorValue{Data: []float64{float64(t.Int)}}, nil

	case ir.HeadTensor:
		v, ok := env[t.Sym]
		if !ok {
			return TensorValue{}, fmt.Errorf("interp: no binding for tensor symbol %d", t.Sym)
		}
		return v, nil

	case ir.HeadAccess:
		// Access only annotates the batch/item split for the type
		// system; it has no runtime effect on the underlying values.
		return Interpret(t.Children[0], env)

	case ir.HeadAccessTranspose:
		return interpretTranspose(t, env)
	case ir.HeadAccessReshape:
		return interpretReshape(t.Children[0], t.Children[1], env)
	case ir.HeadAccessFlatten:
		return interpretFlatten(t, env)
	case ir.HeadAccessSlice:
		return interpretSlice(t, env)
	case ir.HeadAccessConcatenate:
		return interpretConcatenate(t, env)
	case ir.HeadAccessBroadcast:
		return interpretBroadcast(t, env)
	case ir.HeadAccessInsertAxis, ir.HeadAccessSqueeze:
		// Both only ever touch a size-1 dimension, which never changes
		// the row-major element order: they're pure reshapes.
		return interpretAxisOneReshape(t, env)
	case ir.HeadAccessPad:
		return interpretPad(t, env)
	case ir.HeadAccessWindows:
		return interpretWindows(t, env)
	case ir.HeadAccessCartesianProduct:
		return interpretCartesianProduct(t, env)

	case ir.HeadCompute:
		return interpretCompute(t, env)
	case ir.HeadSystolicArray:
		return interpretContraction(t.Children[0], t.Children[1], env)

	case ir.HeadGetAccessShape:
		_, shape, err := shapeOf(t.Children[0])
		if err != nil {
			return TensorValue{}, err
		}
		out := make([]float64, len(shape))
		for i, d := range shape {
			out[i] = float64(d)
		}
		return TensorValue{Shape: []int64{int64(len(shape))}, Data: out}, nil

	default:
		return TensorValue{}, fmt.Errorf("interp: %s has no runtime interpretation (tuples are a type-level-only construct in this reference evaluator)", t.Head)
	}
}

// shapeOf reads a term's statically-inferred access axis and shape,
// reusing ir.Analyze (component D) rather than re-deriving it at
// runtime.
func shapeOf(t *ir.Term) (int, []int64, error) {
	v, err := ir.Analyze(t)
	if err != nil {
		return 0, nil, err
	}
	s, ok := v.Type.(analysis.ShapeType)
	if !ok {
		return 0, nil, fmt.Errorf("interp: %s is not an access term", t.Head)
	}
	return s.AccessAxis, s.Shape, nil
}

func constList(t *ir.Term) []int64 {
	out := make([]int64, len(t.Children))
	for i, c := range t.Children {
		out[i] = c.Int
	}
	return out
}

func offset(strides, idx []int64) int64 {
	o := int64(0)
	for i, s := range strides {
		o += idx[i] * s
	}
	return o
}

func forEachIndex(shape []int64, f func(idx []int64)) {
	total := NumElems(shape)
	idx := make([]int64, len(shape))
	for n := int64(0); n < total; n++ {
		rem := n
		for i := len(shape) - 1; i >= 0; i-- {
			if shape[i] == 0 {
				idx[i] = 0
				continue
			}
			idx[i] = rem % shape[i]
			rem /= shape[i]
		}
		f(idx)
	}
}

func interpretTranspose(t *ir.Term, env Env) (TensorValue, error) {
	in, err := Interpret(t.Children[0], env)
	if err != nil {
		return TensorValue{}, err
	}
	perm := constList(t.Children[1])
	outShape := make([]int64, len(perm))
	for i, p := range perm {
		outShape[i] = in.Shape[p]
	}
	out := newZero(outShape)
	inStrides, outStrides := Strides(in.Shape), Strides(outShape)
	forEachIndex(outShape, func(outIdx []int64) {
		inIdx := make([]int64, len(perm))
		for i, p := range perm {
			inIdx[p] = outIdx[i]
		}
		out.Data[offset(outStrides, outIdx)] = in.Data[offset(inStrides, inIdx)]
	})
	return out, nil
}

func interpretReshape(accessTerm, shapeTerm *ir.Term, env Env) (TensorValue, error) {
	in, err := Interpret(accessTerm, env)
	if err != nil {
		return TensorValue{}, err
	}
	target := constList(shapeTerm)
	return TensorValue{Shape: target, Data: in.Data}, nil
}

func interpretFlatten(t *ir.Term, env Env) (TensorValue, error) {
	axis, shape, err := shapeOf(t.Children[0])
	if err != nil {
		return TensorValue{}, err
	}
	in, err := Interpret(t.Children[0], env)
	if err != nil {
		return TensorValue{}, err
	}
	return TensorValue{Shape: []int64{NumElems(shape[:axis]), NumElems(shape[axis:])}, Data: in.Data}, nil
}

func interpretAxisOneReshape(t *ir.Term, env Env) (TensorValue, error) {
	_, shape, err := shapeOf(t)
	if err != nil {
		return TensorValue{}, err
	}
	in, err := Interpret(t.Children[0], env)
	if err != nil {
		return TensorValue{}, err
	}
	return TensorValue{Shape: shape, Data: in.Data}, nil
}

func interpretSlice(t *ir.Term, env Env) (TensorValue, error) {
	in, err := Interpret(t.Children[0], env)
	if err != nil {
		return TensorValue{}, err
	}
	axis, low := t.Children[1].Int, t.Children[2].Int
	high := t.Children[3].Int
	outShape := append([]int64(nil), in.Shape...)
	outShape[axis] = high - low
	out := newZero(outShape)
	inStrides, outStrides := Strides(in.Shape), Strides(outShape)
	forEachIndex(outShape, func(outIdx []int64) {
		inIdx := append([]int64(nil), outIdx...)
		inIdx[axis] += low
		out.Data[offset(outStrides, outIdx)] = in.Data[offset(inStrides, inIdx)]
	})
	return out, nil
}

func interpretConcatenate(t *ir.Term, env Env) (TensorValue, error) {
	a, err := Interpret(t.Children[0], env)
	if err != nil {
		return TensorValue{}, err
	}
	b, err := Interpret(t.Children[1], env)
	if err != nil {
		return TensorValue{}, err
	}
	axis := t.Children[2].Int
	outShape := append([]int64(nil), a.Shape...)
	outShape[axis] = a.Shape[axis] + b.Shape[axis]
	out := newZero(outShape)
	aStrides, bStrides, outStrides := Strides(a.Shape), Strides(b.Shape), Strides(outShape)
	forEachIndex(outShape, func(outIdx []int64) {
		if outIdx[axis] < a.Shape[axis] {
			out.Data[offset(outStrides, outIdx)] = a.Data[offset(aStrides, outIdx)]
			return
		}
		bIdx := append([]int64(nil), outIdx...)
		bIdx[axis] -= a.Shape[axis]
		out.Data[offset(outStrides, outIdx)] = b.Data[offset(bStrides, bIdx)]
	})
	return out, nil
}

func interpretBroadcast(t *ir.Term, env Env) (TensorValue, error) {
	in, err := Interpret(t.Children[0], env)
	if err != nil {
		return TensorValue{}, err
	}
	target := constList(t.Children[1])
	out := newZero(target)
	inStrides, outStrides := Strides(in.Shape), Strides(target)
	forEachIndex(target, func(outIdx []int64) {
		inIdx := make([]int64, len(in.Shape))
		for i, d := range in.Shape {
			if d == 1 {
				inIdx[i] = 0
			} else {
				inIdx[i] = outIdx[i]
			}
		}
		out.Data[offset(outStrides, outIdx)] = in.Data[offset(inStrides, inIdx)]
	})
	return out, nil
}

func interpretPad(t *ir.Term, env Env) (TensorValue, error) {
	in, err := Interpret(t.Children[0], env)
	if err != nil {
		return TensorValue{}, err
	}
	axis, before, after := t.Children[1].Int, t.Children[2].Int, t.Children[3].Int
	fill := 0.0
	if t.Pad == ir.PadMin {
		fill = padMinSentinel
	}
	outShape := append([]int64(nil), in.Shape...)
	outShape[axis] += before + after
	out := newZero(outShape)
	for i := range out.Data {
		out.Data[i] = fill
	}
	inStrides, outStrides := Strides(in.Shape), Strides(outShape)
	forEachIndex(in.Shape, func(inIdx []int64) {
		outIdx := append([]int64(nil), inIdx...)
		outIdx[axis] += before
		out.Data[offset(outStrides, outIdx)] = in.Data[offset(inStrides, inIdx)]
	})
	return out, nil
}

func interpretWindows(t *ir.Term, env Env) (TensorValue, error) {
	axis, shape, err := shapeOf(t.Children[0])
	if err != nil {
		return TensorValue{}, err
	}
	in, err := Interpret(t.Children[0], env)
	if err != nil {
		return TensorValue{}, err
	}
	filter := constList(t.Children[1])
	stride := constList(t.Children[2])
	batch, item := shape[:axis], shape[axis:]

	numWindows := make([]int64, len(item))
	for i := range item {
		numWindows[i] = (item[i]-filter[i])/stride[i] + 1
	}
	outShape := append(append(append([]int64(nil), batch...), numWindows...), filter...)
	out := newZero(outShape)
	inStrides, outStrides := Strides(in.Shape), Strides(outShape)

	forEachIndex(outShape, func(outIdx []int64) {
		batchIdx := outIdx[:len(batch)]
		windowIdx := outIdx[len(batch) : len(batch)+len(numWindows)]
		filterIdx := outIdx[len(batch)+len(numWindows):]
		inIdx := append([]int64(nil), batchIdx...)
		for i := range item {
			inIdx = append(inIdx, windowIdx[i]*stride[i]+filterIdx[i])
		}
		out.Data[offset(outStrides, outIdx)] = in.Data[offset(inStrides, inIdx)]
	})
	return out, nil
}

// interpretCartesianProduct only supports the pairing mode (equal item
// shapes, used to feed a binary elementwise compute op). The contraction
// mode exists purely to be matched by a dot-product or systolic-array
// lowering rule and is never meant to be materialised on its own; see
// interpretContraction.
func interpretCartesianProduct(t *ir.Term, env Env) (TensorValue, error) {
	aAxis, aShape, err := shapeOf(t.Children[0])
	if err != nil {
		return TensorValue{}, err
	}
	bAxis, bShape, err := shapeOf(t.Children[1])
	if err != nil {
		return TensorValue{}, err
	}
	aItem, bItem := aShape[aAxis:], bShape[bAxis:]
	if !equalDims(aItem, bItem) {
		return TensorValue{}, fmt.Errorf("interp: access-cartesian-product in contraction mode cannot be interpreted standalone; it must be the direct operand of compute dot-product")
	}
	a, err := Interpret(t.Children[0], env)
	if err != nil {
		return TensorValue{}, err
	}
	b, err := Interpret(t.Children[1], env)
	if err != nil {
		return TensorValue{}, err
	}
	aBatch, bBatch := aShape[:aAxis], bShape[:bAxis]
	outShape := append(append(append([]int64(nil), aBatch...), bBatch...), append([]int64{2}, aItem...)...)
	out := newZero(outShape)
	aStrides, bStrides, outStrides := Strides(a.Shape), Strides(b.Shape), Strides(outShape)

	forEachIndex(outShape, func(outIdx []int64) {
		aBatchIdx := outIdx[:len(aBatch)]
		bBatchIdx := outIdx[len(aBatch) : len(aBatch)+len(bBatch)]
		pair := outIdx[len(aBatch)+len(bBatch)]
		itemIdx := outIdx[len(aBatch)+len(bBatch)+1:]
		if pair == 0 {
			aIdx := append(append([]int64(nil), aBatchIdx...), itemIdx...)
			out.Data[offset(outStrides, outIdx)] = a.Data[offset(aStrides, aIdx)]
		} else {
			bIdx := append(append([]int64(nil), bBatchIdx...), itemIdx...)
			out.Data[offset(outStrides, outIdx)] = b.Data[offset(bStrides, bIdx)]
		}
	})
	return out, nil
}

func equalDims(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// interpretContraction computes the shared contraction semantics of
// "dot-product over a contraction-mode cartesian product" and
// "systolic-array R C", both of which reduce a's trailing item dim
// against b's leading item dim. Deriving systolic-array's runtime value
// from the very same routine that proves out the matmul-lowering rule's
// semantics is what lets scenario (a) be checked end-to-end (§8a).
func interpretContraction(aTerm, bTerm *ir.Term, env Env) (TensorValue, error) {
	aAxis, aShape, err := shapeOf(aTerm)
	if err != nil {
		return TensorValue{}, err
	}
	bAxis, bShape, err := shapeOf(bTerm)
	if err != nil {
		return TensorValue{}, err
	}
	a, err := Interpret(aTerm, env)
	if err != nil {
		return TensorValue{}, err
	}
	b, err := Interpret(bTerm, env)
	if err != nil {
		return TensorValue{}, err
	}
	aBatch, aItem := aShape[:aAxis], aShape[aAxis:]
	bBatch, bItem := bShape[:bAxis], bShape[bAxis:]
	k := aItem[len(aItem)-1]
	outItem := append(append([]int64(nil), aItem[:len(aItem)-1]...), bItem[1:]...)
	outShape := append(append(append([]int64(nil), aBatch...), bBatch...), outItem...)

	out := newZero(outShape)
	aStrides, bStrides, outStrides := Strides(a.Shape), Strides(b.Shape), Strides(outShape)

	forEachIndex(outShape, func(outIdx []int64) {
		aBatchIdx := outIdx[:len(aBatch)]
		bBatchIdx := outIdx[len(aBatch) : len(aBatch)+len(bBatch)]
		outItemIdx := outIdx[len(aBatch)+len(bBatch):]
		aItemPrefix := outItemIdx[:len(aItem)-1]
		bItemSuffix := outItemIdx[len(aItem)-1:]

		sum := 0.0
		for kk := int64(0); kk < k; kk++ {
			aIdx := append(append(append([]int64(nil), aBatchIdx...), aItemPrefix...), kk)
			bIdx := append(append(append([]int64(nil), bBatchIdx...), kk), bItemSuffix...)
			sum += a.Data[offset(aStrides, aIdx)] * b.Data[offset(bStrides, bIdx)]
		}
		out.Data[offset(outStrides, outIdx)] = sum
	})
	return out, nil
}

func interpretCompute(t *ir.Term, env Env) (TensorValue, error) {
	child := t.Children[0]
	if t.Op == ir.OpDotProduct && child.Head == ir.HeadAccessCartesianProduct {
		aAxis, aShape, err := shapeOf(child.Children[0])
		if err != nil {
			return TensorValue{}, err
		}
		bAxis, bShape, err := shapeOf(child.Children[1])
		if err != nil {
			return TensorValue{}, err
		}
		if !equalDims(aShape[aAxis:], bShape[bAxis:]) {
			// Contraction mode: the cartesian product was only ever a
			// type-level marker for this contraction.
			return interpretContraction(child.Children[0], child.Children[1], env)
		}
	}

	axis, shape, err := shapeOf(child)
	if err != nil {
		return TensorValue{}, err
	}
	in, err := Interpret(child, env)
	if err != nil {
		return TensorValue{}, err
	}
	batch, item := shape[:axis], shape[axis:]

	switch t.Op {
	case ir.OpDotProduct:
		return reducePair(in, batch, item, func(x, y float64) float64 { return x * y }, true)
	case ir.OpElementwiseAdd:
		return reducePair(in, batch, item, func(x, y float64) float64 { return x + y }, false)
	case ir.OpElementwiseMul:
		return reducePair(in, batch, item, func(x, y float64) float64 { return x * y }, false)
	case ir.OpElementwiseDiv:
		return reducePair(in, batch, item, func(x, y float64) float64 { return x / y }, false)
	case ir.OpReduceSum:
		return reduceItem(in, batch, item, 0, func(acc, v float64) float64 { return acc + v }, nil)
	case ir.OpReduceMax:
		return reduceItem(in, batch, item, math.Inf(-1), math.Max, nil)
	case ir.OpReduceMean:
		n := float64(NumElems(item))
		return reduceItem(in, batch, item, 0, func(acc, v float64) float64 { return acc + v }, func(acc float64) float64 { return acc / n })
	case ir.OpNegative:
		return unary(in, func(v float64) float64 { return -v }), nil
	case ir.OpRelu:
		return unary(in, func(v float64) float64 { return math.Max(0, v) }), nil
	case ir.OpSqrt:
		return unary(in, math.Sqrt), nil
	case ir.OpSoftmax:
		return softmax(in, batch, item), nil
	default:
		return TensorValue{}, fmt.Errorf("interp: unsupported compute op %s", t.Op)
	}
}

func unary(in TensorValue, f func(float64) float64) TensorValue {
	out := TensorValue{Shape: append([]int64(nil), in.Shape...), Data: make([]float64, len(in.Data))}
	for i, v := range in.Data {
		out.Data[i] = f(v)
	}
	return out
}

// reducePair implements the compute ops that consume a paired access
// (leading item dim 2): dot-product fully reduces over the remaining
// item dims after the pairwise op, the elementwise ops don't reduce.
func reducePair(in TensorValue, batch, item []int64, op func(x, y float64) float64, fullyReduce bool) (TensorValue, error) {
	if len(item) < 1 || item[0] != 2 {
		return TensorValue{}, fmt.Errorf("interp: pairwise compute requires a paired access (leading item dim 2), got %v", item)
	}
	rest := item[1:]
	inStrides := Strides(in.Shape)

	if fullyReduce {
		out := newZero(batch)
		outStrides := Strides(batch)
		forEachIndex(batch, func(batchIdx []int64) {
			sum := 0.0
			forEachIndex(rest, func(restIdx []int64) {
				idx0 := append(append(append([]int64(nil), batchIdx...), int64(0)), restIdx...)
				idx1 := append(append(append([]int64(nil), batchIdx...), int64(1)), restIdx...)
				sum += op(in.Data[offset(inStrides, idx0)], in.Data[offset(inStrides, idx1)])
			})
			out.Data[offset(outStrides, batchIdx)] = sum
		})
		return out, nil
	}

	outShape := append(append([]int64(nil), batch...), rest...)
	out := newZero(outShape)
	outStrides := Strides(outShape)
	forEachIndex(outShape, func(outIdx []int64) {
		batchIdx, restIdx := outIdx[:len(batch)], outIdx[len(batch):]
		idx0 := append(append(append([]int64(nil), batchIdx...), int64(0)), restIdx...)
		idx1 := append(append(append([]int64(nil), batchIdx...), int64(1)), restIdx...)
		out.Data[offset(outStrides, outIdx)] = op(in.Data[offset(inStrides, idx0)], in.Data[offset(inStrides, idx1)])
	})
	return out, nil
}

func reduceItem(in TensorValue, batch, item []int64, init float64, fold func(acc, v float64) float64, final func(float64) float64) (TensorValue, error) {
	out := newZero(batch)
	inStrides, outStrides := Strides(in.Shape), Strides(batch)
	forEachIndex(batch, func(batchIdx []int64) {
		acc := init
		forEachIndex(item, func(itemIdx []int64) {
			idx := append(append([]int64(nil), batchIdx...), itemIdx...)
			acc = fold(acc, in.Data[offset(inStrides, idx)])
		})
		if final != nil {
			acc = final(acc)
		}
		out.Data[offset(outStrides, batchIdx)] = acc
	})
	return out, nil
}

func softmax(in TensorValue, batch, item []int64) TensorValue {
	out := newZero(in.Shape)
	inStrides := Strides(in.Shape)
	forEachIndex(batch, func(batchIdx []int64) {
		max := math.Inf(-1)
		forEachIndex(item, func(itemIdx []int64) {
			idx := append(append([]int64(nil), batchIdx...), itemIdx...)
			if v := in.Data[offset(inStrides, idx)]; v > max {
				max = v
			}
		})
		sum := 0.0
		forEachIndex(item, func(itemIdx []int64) {
			idx := append(append([]int64(nil), batchIdx...), itemIdx...)
			sum += math.Exp(in.Data[offset(inStrides, idx)] - max)
		})
		forEachIndex(item, func(itemIdx []int64) {
			idx := append(append([]int64(nil), batchIdx...), itemIdx...)
			o := offset(inStrides, idx)
			out.Data[o] = math.Exp(in.Data[o]-max) / sum
		})
	})
	return out
}
