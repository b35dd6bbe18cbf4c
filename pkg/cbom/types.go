package cbom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

// Unknown is the sentinel used for an absent value after normalization.
const Unknown = "UNKNOWN"

// RawAsset is one cryptographic asset as extracted from a document, before classification.
// A nil field means the document did not carry a string value for it.
type RawAsset struct {
	Algorithm *string
	Mode      *string
	AssetType *string
	API       *string
}

// QuantumSafety is the quantum-resistance class of an asset's algorithm.
type QuantumSafety int

const (
	QuantumSafe QuantumSafety = iota
	NotQuantumSafe
	QuantumUnknown

	numQuantumSafety = iota
)

var quantumSafetyNames = [numQuantumSafety]string{"quantumSafe", "notQuantumSafe", "unknown"}

func (q QuantumSafety) String() string {
	if q < 0 || int(q) >= numQuantumSafety {
		return fmt.Sprintf("QuantumSafety(%d)", int(q))
	}
	return quantumSafetyNames[q]
}

// Primitive is the structural category of an asset. Every asset falls in exactly one.
type Primitive int

const (
	PrimitiveHash Primitive = iota
	PrimitiveMAC
	PrimitiveBlockCipher
	PrimitivePKE
	PrimitiveSignature
	PrimitiveAE
	PrimitiveOther

	numPrimitives = iota
)

var primitiveNames = [numPrimitives]string{"hash", "mac", "block-cipher", "pke", "signature", "ae", "other"}

func (p Primitive) String() string {
	if p < 0 || int(p) >= numPrimitives {
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
	return primitiveNames[p]
}

// Primitives lists every primitive bucket in report order.
func Primitives() []Primitive {
	out := make([]Primitive, numPrimitives)
	for i := range out {
		out[i] = Primitive(i)
	}
	return out
}

// Function is a behavioral usage category. An asset may fall in any number of them.
type Function int

const (
	FunctionKeygen Function = iota
	FunctionEncrypt
	FunctionDecrypt
	FunctionSign
	FunctionVerify
	FunctionKDF
	FunctionTLS
	FunctionRNG

	numFunctions = iota
)

var functionNames = [numFunctions]string{"keygen", "encrypt", "decrypt", "sign", "verify", "kdf", "tls", "rng"}

func (f Function) String() string {
	if f < 0 || int(f) >= numFunctions {
		return fmt.Sprintf("Function(%d)", int(f))
	}
	return functionNames[f]
}

// Functions lists every function bucket in report order.
func Functions() []Function {
	out := make([]Function, numFunctions)
	for i := range out {
		out[i] = Function(i)
	}
	return out
}

// FunctionSet is a set of function buckets.
type FunctionSet uint8

func (s FunctionSet) Add(f Function) FunctionSet { return s | 1<<uint(f) }

func (s FunctionSet) Has(f Function) bool { return s&(1<<uint(f)) != 0 }

// Len is the number of buckets in the set.
func (s FunctionSet) Len() int {
	n := 0
	for _, f := range Functions() {
		if s.Has(f) {
			n++
		}
	}
	return n
}

// Functions returns the members of the set in report order.
func (s FunctionSet) Functions() []Function {
	var out []Function
	for _, f := range Functions() {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s FunctionSet) String() string {
	names := []string{}
	for _, f := range s.Functions() {
		names = append(names, f.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// QuantumSafetyCounts is the three-way quantum-safety split. The counters always sum to the
// number of assets.
type QuantumSafetyCounts struct {
	QuantumSafe    int `json:"quantumSafe" yaml:"quantumSafe"`
	NotQuantumSafe int `json:"notQuantumSafe" yaml:"notQuantumSafe"`
	Unknown        int `json:"unknown" yaml:"unknown"`
}

// Get returns the counter for a class.
func (c QuantumSafetyCounts) Get(q QuantumSafety) int {
	switch q {
	case QuantumSafe:
		return c.QuantumSafe
	case NotQuantumSafe:
		return c.NotQuantumSafe
	case QuantumUnknown:
		return c.Unknown
	}
	return 0
}

func (c QuantumSafetyCounts) Total() int {
	return c.QuantumSafe + c.NotQuantumSafe + c.Unknown
}

// BucketCount is one named counter of a Breakdown.
type BucketCount struct {
	Name  string
	Count int
}

// Breakdown is an ordered set of named counters. It marshals as a JSON object (or YAML mapping)
// whose keys keep the fixed bucket order, so consumers can render stable legends.
type Breakdown []BucketCount

// Get returns the count of the named bucket, or 0 if there is no such bucket.
func (b Breakdown) Get(name string) int {
	for _, bc := range b {
		if bc.Name == name {
			return bc.Count
		}
	}
	return 0
}

// Names returns the bucket names in order.
func (b Breakdown) Names() []string {
	names := make([]string, len(b))
	for i, bc := range b {
		names[i] = bc.Name
	}
	return names
}

// Total is the sum of every counter.
func (b Breakdown) Total() int {
	total := 0
	for _, bc := range b {
		total += bc.Count
	}
	return total
}

// Hits is the number of buckets with a nonzero count.
func (b Breakdown) Hits() int {
	hits := 0
	for _, bc := range b {
		if bc.Count > 0 {
			hits++
		}
	}
	return hits
}

// Max is the largest counter, or 0 for an empty breakdown.
func (b Breakdown) Max() int {
	largest := 0
	for _, bc := range b {
		if bc.Count > largest {
			largest = bc.Count
		}
	}
	return largest
}

func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bc := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(bc.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		fmt.Fprintf(&buf, ":%d", bc.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object back into a Breakdown, keeping the document's key order.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("breakdown must be a JSON object, got %v", tok)
	}
	out := Breakdown{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("breakdown bucket %q: %w", name, err)
		}
		out = append(out, BucketCount{Name: name, Count: count})
	}
	*b = out
	return nil
}

func (b Breakdown) MarshalYAML() (interface{}, error) {
	ms := make(yaml.MapSlice, len(b))
	for i, bc := range b {
		ms[i] = yaml.MapItem{Key: bc.Name, Value: bc.Count}
	}
	return ms, nil
}

// DashboardData is the normalized statistical summary of a CBOM document.
type DashboardData struct {
	// TotalAssets is the number of extracted asset records, including those that classify as
	// other/unknown everywhere.
	TotalAssets int `json:"totalAssets" yaml:"totalAssets"`

	// TotalPrimitives is the number of distinct primitive buckets with at least one hit.
	TotalPrimitives int `json:"totalPrimitives" yaml:"totalPrimitives"`

	// TotalFunctions is the number of distinct function buckets with at least one hit.
	TotalFunctions int `json:"totalFunctions" yaml:"totalFunctions"`

	QuantumSafety QuantumSafetyCounts `json:"quantumSafety" yaml:"quantumSafety"`

	// Primitives has exactly one entry per primitive bucket and sums to TotalAssets.
	Primitives Breakdown `json:"primitives" yaml:"primitives"`

	// Functions has exactly one entry per function bucket. Buckets are not exclusive, so the
	// sum is unrelated to TotalAssets.
	Functions Breakdown `json:"functions" yaml:"functions"`
}
