package cbom

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

var (
	// Post-quantum algorithm identifiers. Matching is exact on the normalized name.
	pqAlgorithms = mapset.NewSet("KYBER", "DILITHIUM", "FALCON", "SPHINCS", "SPHINCS+", "BIKE", "SIKE")

	kdfAlgorithms = mapset.NewSet("PBKDF2", "SCRYPT", "HKDF")

	// Modes that turn a symmetric cipher into authenticated encryption.
	aeModes = mapset.NewSet("GCM", "CCM", "POLY1305")
)

// IsPostQuantum reports whether a normalized algorithm name is on the post-quantum allow-list.
func IsPostQuantum(algorithm string) bool {
	return pqAlgorithms.Contains(algorithm)
}

// ClassifyQuantumSafety classifies a normalized algorithm name.
func ClassifyQuantumSafety(algorithm string) QuantumSafety {
	switch {
	case algorithm == "" || algorithm == Unknown:
		return QuantumUnknown
	case IsPostQuantum(algorithm):
		return QuantumSafe
	default:
		return NotQuantumSafe
	}
}

// ClassifyPrimitive places an asset in exactly one primitive bucket.
//
// The asset type decides, with the mode separating authenticated encryption from plain block
// ciphers. Everything else, key derivation functions included, is PrimitiveOther.
func ClassifyPrimitive(asset RawAsset) Primitive {
	assetType := NormalizeValue(asset.AssetType)
	mode := NormalizeValue(asset.Mode)

	switch assetType {
	case "HASH":
		return PrimitiveHash
	case "MAC":
		return PrimitiveMAC
	case "SIGNATURE":
		return PrimitiveSignature
	case "ASYMMETRIC":
		return PrimitivePKE
	case "AEAD":
		return PrimitiveAE
	case "SYMMETRIC":
		if aeModes.Contains(mode) {
			return PrimitiveAE
		}
		return PrimitiveBlockCipher
	}
	return PrimitiveOther
}

// functionInput is the normalized view of an asset that function predicates test.
type functionInput struct {
	api       string
	algorithm string
	assetType string
}

type functionRule struct {
	bucket Function
	match  func(in functionInput) bool
}

func apiContains(subs ...string) func(functionInput) bool {
	return func(in functionInput) bool {
		for _, s := range subs {
			if strings.Contains(in.api, s) {
				return true
			}
		}
		return false
	}
}

// Every rule is evaluated for every asset; they are not a priority chain.
var functionRules = []functionRule{
	{FunctionEncrypt, apiContains("encrypt")},
	{FunctionDecrypt, apiContains("decrypt")},
	{FunctionSign, apiContains("sign")},
	{FunctionVerify, apiContains("verify")},
	{FunctionKeygen, func(in functionInput) bool {
		return apiContains("generate", "key")(in) || strings.Contains(in.assetType, "KEY")
	}},
	{FunctionKDF, func(in functionInput) bool {
		return in.assetType == "KDF" || kdfAlgorithms.Contains(in.algorithm)
	}},
	{FunctionTLS, func(in functionInput) bool {
		return apiContains("tls")(in) || in.algorithm == "TLS"
	}},
	{FunctionRNG, apiContains("rand", "rng")},
}

// ClassifyFunction returns every function bucket the asset's usage falls in. The set may be
// empty.
func ClassifyFunction(asset RawAsset) FunctionSet {
	in := functionInput{
		api:       normalizeAPI(asset.API),
		algorithm: NormalizeValue(asset.Algorithm),
		assetType: NormalizeValue(asset.AssetType),
	}

	var set FunctionSet
	for _, rule := range functionRules {
		if rule.match(in) {
			set = set.Add(rule.bucket)
		}
	}
	return set
}
