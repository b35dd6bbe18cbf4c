package cbom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func str(s string) *string { return &s }

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, Unknown, NormalizeValue(nil))
	assert.Equal(t, "AES", NormalizeValue(str("aes")))
	assert.Equal(t, "SPHINCS+", NormalizeValue(str("sphincs+")))
	assert.Equal(t, "", NormalizeValue(str("")))
}

func TestClassifyQuantumSafety(t *testing.T) {
	tests := []struct {
		algorithm string
		expected  QuantumSafety
	}{
		{Unknown, QuantumUnknown},
		{"", QuantumUnknown},
		{"KYBER", QuantumSafe},
		{"DILITHIUM", QuantumSafe},
		{"FALCON", QuantumSafe},
		{"SPHINCS", QuantumSafe},
		{"SPHINCS+", QuantumSafe},
		{"BIKE", QuantumSafe},
		{"SIKE", QuantumSafe},
		{"RSA", NotQuantumSafe},
		{"AES", NotQuantumSafe},
		// No substring matching.
		{"KYBER-768", NotQuantumSafe},
		{"CRYSTALS-KYBER", NotQuantumSafe},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyQuantumSafety(tt.algorithm))
			assert.Equal(t, tt.expected == QuantumSafe, IsPostQuantum(tt.algorithm))
		})
	}
}

func TestClassifyPrimitive(t *testing.T) {
	tests := []struct {
		name     string
		asset    RawAsset
		expected Primitive
	}{
		{"hash", RawAsset{AssetType: str("HASH")}, PrimitiveHash},
		{"mac lowercase", RawAsset{AssetType: str("mac")}, PrimitiveMAC},
		{"signature", RawAsset{AssetType: str("SIGNATURE")}, PrimitiveSignature},
		{"asymmetric", RawAsset{AssetType: str("ASYMMETRIC"), Algorithm: str("RSA")}, PrimitivePKE},
		{"aead", RawAsset{AssetType: str("AEAD")}, PrimitiveAE},
		{"symmetric gcm", RawAsset{AssetType: str("SYMMETRIC"), Mode: str("gcm")}, PrimitiveAE},
		{"symmetric ccm", RawAsset{AssetType: str("SYMMETRIC"), Mode: str("CCM")}, PrimitiveAE},
		{"symmetric poly1305", RawAsset{AssetType: str("SYMMETRIC"), Mode: str("POLY1305")}, PrimitiveAE},
		{"symmetric cbc", RawAsset{AssetType: str("SYMMETRIC"), Mode: str("CBC")}, PrimitiveBlockCipher},
		{"symmetric no mode", RawAsset{AssetType: str("SYMMETRIC")}, PrimitiveBlockCipher},
		{"mode without type", RawAsset{Mode: str("GCM")}, PrimitiveOther},
		{"kdf algorithm", RawAsset{Algorithm: str("PBKDF2")}, PrimitiveOther},
		{"kdf type", RawAsset{AssetType: str("KDF"), Algorithm: str("HKDF")}, PrimitiveOther},
		{"empty", RawAsset{}, PrimitiveOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyPrimitive(tt.asset))
		})
	}
}

func TestClassifyFunction(t *testing.T) {
	tests := []struct {
		name     string
		asset    RawAsset
		expected []Function
	}{
		{"empty", RawAsset{}, nil},
		{"encrypt", RawAsset{API: str("Cipher.encrypt")}, []Function{FunctionEncrypt}},
		{"decrypt", RawAsset{API: str("decrypt")}, []Function{FunctionDecrypt}},
		{"sign and encrypt", RawAsset{API: str("signAndEncrypt")},
			[]Function{FunctionEncrypt, FunctionSign}},
		{"verify", RawAsset{API: str("crypto.verify")}, []Function{FunctionVerify}},
		{"keygen from api", RawAsset{API: str("generateKeyPair")}, []Function{FunctionKeygen}},
		{"keygen from key api", RawAsset{API: str("createSecretKey")}, []Function{FunctionKeygen}},
		{"keygen from asset type", RawAsset{AssetType: str("secret-key")}, []Function{FunctionKeygen}},
		{"kdf from type", RawAsset{AssetType: str("KDF")}, []Function{FunctionKDF}},
		{"kdf from algorithm", RawAsset{Algorithm: str("scrypt")}, []Function{FunctionKDF}},
		{"tls from api", RawAsset{API: str("tls.connect")}, []Function{FunctionTLS}},
		{"tls from algorithm", RawAsset{Algorithm: str("tls")}, []Function{FunctionTLS}},
		{"rng", RawAsset{API: str("randomBytes")}, []Function{FunctionRNG}},
		{"rng short", RawAsset{API: str("DRBG.rng")}, []Function{FunctionRNG}},
		{"absent api is not unknown", RawAsset{Algorithm: str("AES")}, nil},
		{"many", RawAsset{API: str("generateKeyAndSignTls"), Algorithm: str("HKDF")},
			[]Function{FunctionKeygen, FunctionSign, FunctionKDF, FunctionTLS}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := ClassifyFunction(tt.asset)
			assert.Equal(t, tt.expected, set.Functions())
			assert.Equal(t, len(tt.expected), set.Len())
		})
	}
}

func TestClassificationIsTotal(t *testing.T) {
	values := []*string{nil, str(""), str("HASH"), str("SYMMETRIC"), str("GCM"), str("KYBER"), str("KDF"), str("???")}
	for _, a := range values {
		for _, m := range values {
			for _, ty := range values {
				for _, api := range values {
					asset := RawAsset{Algorithm: a, Mode: m, AssetType: ty, API: api}
					p := ClassifyPrimitive(asset)
					assert.True(t, p >= 0 && int(p) < numPrimitives)
					q := ClassifyQuantumSafety(NormalizeValue(asset.Algorithm))
					assert.True(t, q >= 0 && int(q) < numQuantumSafety)
					n := ClassifyFunction(asset).Len()
					assert.True(t, n >= 0 && n <= numFunctions)
				}
			}
		}
	}
}

func TestFunctionSetString(t *testing.T) {
	var s FunctionSet
	assert.Equal(t, "{}", s.String())
	s = s.Add(FunctionRNG).Add(FunctionKeygen).Add(FunctionRNG)
	assert.Equal(t, "{keygen,rng}", s.String())
	assert.True(t, s.Has(FunctionRNG))
	assert.False(t, s.Has(FunctionTLS))
}
