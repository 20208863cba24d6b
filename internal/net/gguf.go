package net

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sanyaade-teachings/mlpack/internal/layer"
)

// GGUF Constants
const (
	GGUFMagic     = 0x46554747 // "GGUF" in little-endian
	GGUFVersion   = 3
	ggufAlignment = 32
)

// GGUF Value Types
type GGUFType uint32

const (
	GGUFTypeUint8   GGUFType = 0
	GGUFTypeInt8    GGUFType = 1
	GGUFTypeUint16  GGUFType = 2
	GGUFTypeInt16   GGUFType = 3
	GGUFTypeUint32  GGUFType = 4
	GGUFTypeInt32   GGUFType = 5
	GGUFTypeFloat32 GGUFType = 6
	GGUFTypeBool    GGUFType = 7
	GGUFTypeString  GGUFType = 8
	GGUFTypeArray   GGUFType = 9
	GGUFTypeUint64  GGUFType = 10
	GGUFTypeInt64   GGUFType = 11
	GGUFTypeFloat64 GGUFType = 12
)

// GGML Tensor Types supported by the exporter.
type GGMLType uint32

const (
	GGMLTypeF32 GGMLType = 0
	GGMLTypeF16 GGMLType = 1
)

func (t GGMLType) elemSize() uint64 {
	if t == GGMLTypeF16 {
		return 2
	}
	return 4
}

// GGUFWriter writes the GGUF container format and counts the bytes written
// so sections can be aligned.
type GGUFWriter struct {
	w       io.Writer
	written uint64
}

func NewGGUFWriter(w io.Writer) *GGUFWriter {
	return &GGUFWriter{w: w}
}

func (gw *GGUFWriter) write(v any) error {
	if err := binary.Write(gw.w, binary.LittleEndian, v); err != nil {
		return err
	}
	gw.written += uint64(binary.Size(v))
	return nil
}

func (gw *GGUFWriter) WriteHeader(kvCount, tensorCount uint64) error {
	for _, v := range []any{uint32(GGUFMagic), uint32(GGUFVersion), tensorCount, kvCount} {
		if err := gw.write(v); err != nil {
			return err
		}
	}
	return nil
}

func (gw *GGUFWriter) WriteString(s string) error {
	if err := gw.write(uint64(len(s))); err != nil {
		return err
	}
	n, err := io.WriteString(gw.w, s)
	gw.written += uint64(n)
	return err
}

// WriteKV writes one metadata pair. Only scalar and string values are
// supported.
func (gw *GGUFWriter) WriteKV(key string, valType GGUFType, value any) error {
	if err := gw.WriteString(key); err != nil {
		return err
	}
	if err := gw.write(uint32(valType)); err != nil {
		return err
	}

	switch valType {
	case GGUFTypeString:
		return gw.WriteString(value.(string))
	case GGUFTypeBool:
		var b uint8
		if value.(bool) {
			b = 1
		}
		return gw.write(b)
	case GGUFTypeArray:
		return fmt.Errorf("gguf: array values are not supported")
	}
	if binary.Size(value) <= 0 {
		return fmt.Errorf("gguf: unsupported value %T for type %d", value, valType)
	}
	return gw.write(value)
}

func (gw *GGUFWriter) WriteTensorInfo(name string, shape []uint64, ggmlType GGMLType, offset uint64) error {
	if err := gw.WriteString(name); err != nil {
		return err
	}
	if err := gw.write(uint32(len(shape))); err != nil {
		return err
	}
	// GGUF dimensions are in reverse order (last dimension first)
	for i := len(shape) - 1; i >= 0; i-- {
		if err := gw.write(shape[i]); err != nil {
			return err
		}
	}
	if err := gw.write(uint32(ggmlType)); err != nil {
		return err
	}
	return gw.write(offset)
}

// Pad writes zeros up to the next multiple of alignment.
func (gw *GGUFWriter) Pad(alignment uint64) error {
	if rem := gw.written % alignment; rem != 0 {
		n, err := gw.w.Write(make([]byte, alignment-rem))
		gw.written += uint64(n)
		return err
	}
	return nil
}

// WriteTensor writes values in the given element type.
func (gw *GGUFWriter) WriteTensor(values []float64, ggmlType GGMLType) error {
	for _, v := range values {
		var err error
		if ggmlType == GGMLTypeF16 {
			err = gw.write(Float32ToFloat16(float32(v)))
		} else {
			err = gw.write(float32(v))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type ggufTensor struct {
	name   string
	shape  []uint64
	values []float64
}

// ggufTensors lists the weight and bias of every Linear layer and the scale
// and shift of every LayerNorm.
func (n *Network) ggufTensors() []ggufTensor {
	views := make([][]float64, len(n.layers))
	if n.parameters != nil {
		copy(views, n.splitParameters())
	}
	var tensors []ggufTensor
	for i, l := range n.layers {
		if views[i] == nil {
			continue
		}
		switch v := l.(type) {
		case *layer.Linear:
			in, out := v.InSize(), v.OutSize()
			tensors = append(tensors,
				ggufTensor{fmt.Sprintf("blk.%d.weight", i), []uint64{uint64(out), uint64(in)}, views[i][:out*in]},
				ggufTensor{fmt.Sprintf("blk.%d.bias", i), []uint64{uint64(out)}, views[i][out*in:]},
			)
		case *layer.LayerNorm:
			size := v.OutputSize()
			tensors = append(tensors,
				ggufTensor{fmt.Sprintf("blk.%d.norm.weight", i), []uint64{uint64(size)}, views[i][:size]},
				ggufTensor{fmt.Sprintf("blk.%d.norm.bias", i), []uint64{uint64(size)}, views[i][size:]},
			)
		}
	}
	return tensors
}

// ExportGGUF writes the weights of the network's Linear and LayerNorm layers
// as a GGUF file with tensors of type ggmlType.
func (n *Network) ExportGGUF(w io.Writer, ggmlType GGMLType) error {
	if ggmlType != GGMLTypeF32 && ggmlType != GGMLTypeF16 {
		return fmt.Errorf("gguf: unsupported tensor type %d", ggmlType)
	}
	tensors := n.ggufTensors()
	gw := NewGGUFWriter(w)

	if err := gw.WriteHeader(3, uint64(len(tensors))); err != nil {
		return fmt.Errorf("failed to write gguf header: %w", err)
	}
	kvs := []struct {
		key   string
		typ   GGUFType
		value any
	}{
		{"general.architecture", GGUFTypeString, "ffn"},
		{"general.alignment", GGUFTypeUint32, uint32(ggufAlignment)},
		{"ffn.layer_count", GGUFTypeUint32, uint32(len(n.layers))},
	}
	for _, kv := range kvs {
		if err := gw.WriteKV(kv.key, kv.typ, kv.value); err != nil {
			return fmt.Errorf("failed to write gguf metadata %s: %w", kv.key, err)
		}
	}

	var offset uint64
	for _, t := range tensors {
		if err := gw.WriteTensorInfo(t.name, t.shape, ggmlType, offset); err != nil {
			return fmt.Errorf("failed to write gguf tensor info %s: %w", t.name, err)
		}
		size := uint64(len(t.values)) * ggmlType.elemSize()
		offset += (size + ggufAlignment - 1) / ggufAlignment * ggufAlignment
	}

	for _, t := range tensors {
		if err := gw.Pad(ggufAlignment); err != nil {
			return fmt.Errorf("failed to pad gguf data: %w", err)
		}
		if err := gw.WriteTensor(t.values, ggmlType); err != nil {
			return fmt.Errorf("failed to write gguf tensor %s: %w", t.name, err)
		}
	}
	return gw.Pad(ggufAlignment)
}

// SaveGGUF writes ExportGGUF output to a file.
func (n *Network) SaveGGUF(filename string, ggmlType GGMLType) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	bw := bufio.NewWriter(file)
	if err := n.ExportGGUF(bw, ggmlType); err != nil {
		return err
	}
	return bw.Flush()
}

// Float32ToFloat16 converts a float32 to float16 (represented as uint16)
func Float32ToFloat16(f float32) uint16 {
	bits := math.Float32bits(f)
	s := uint16((bits >> 16) & 0x8000)
	e := int16((bits >> 23) & 0xFF)
	m := bits & 0x7FFFFF

	if e == 0 {
		// Zero or denormal
		return s
	} else if e == 0xFF {
		// Inf or NaN
		if m == 0 {
			return s | 0x7C00
		}
		return s | 0x7C00 | uint16(m>>13) | 1
	}

	e -= 127 - 15
	if e >= 31 {
		// Overflow to Inf
		return s | 0x7C00
	} else if e <= 0 {
		// Underflow to denormal or zero
		if e < -10 {
			return s
		}
		m |= 0x800000
		m >>= uint32(1 - e)
		return s | uint16(m>>13)
	}

	return s | uint16(e<<10) | uint16(m>>13)
}
