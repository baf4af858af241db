package testdata

// KeyVector is a known PBKDF2-HMAC-SHA1 derivation.
type KeyVector struct {
	Name        string
	Passphrase  string
	SaltHex     string
	KeySizeBits int
	Iterations  int
	KeyHex      string
}

// CipherVector is a known AES-CBC/PKCS#7 encryption.
type CipherVector struct {
	Name       string
	KeyHex     string
	IVHex      string
	Plaintext  string
	CipherText string // Base64
}

// EnvelopeVector is a wrapped string produced by a peer implementation.
type EnvelopeVector struct {
	Name       string
	Passphrase string
	Wrapped    string
	IVHex      string
	SaltHex    string
	CipherText string
	Plaintext  string
}

// Shared parameters of the generated vectors.
const (
	Passphrase = "vs@123"
	SaltHex    = "000102030405060708090a0b0c0d0e0f"
	IVHex      = "101112131415161718191a1b1c1d1e1f"
)

// KeyVectors were generated with Python hashlib.pbkdf2_hmac("sha1", ...);
// the first one is RFC 6070 truncated to 128 bits.
var KeyVectors = []KeyVector{
	{
		Name:        "RFC 6070 two iterations",
		Passphrase:  "password",
		SaltHex:     "73616c74",
		KeySizeBits: 128,
		Iterations:  2,
		KeyHex:      "ea6c014dc72d6f8ccd1ed92ace1d41f0",
	},
	{
		Name:        "default parameters",
		Passphrase:  Passphrase,
		SaltHex:     SaltHex,
		KeySizeBits: 128,
		Iterations:  10000,
		KeyHex:      "a6dde04d797ede8448fe35108e64013f",
	},
	{
		Name:        "256 bit key",
		Passphrase:  Passphrase,
		SaltHex:     SaltHex,
		KeySizeBits: 256,
		Iterations:  10000,
		KeyHex:      "a6dde04d797ede8448fe35108e64013f3c92fbaea2e177811a0056175a6ba3f3",
	},
}

// CipherVectors were generated with openssl enc -aes-*-cbc.
var CipherVectors = []CipherVector{
	{
		Name:       "NIST SP 800-38A F.2.1 block plus padding",
		KeyHex:     "2b7e151628aed2a6abf7158809cf4f3c",
		IVHex:      "000102030405060708090a0b0c0d0e0f",
		Plaintext:  "\x6b\xc1\xbe\xe2\x2e\x40\x9f\x96\xe9\x3d\x7e\x11\x73\x93\x17\x2a",
		CipherText: "dkmrrIEZskbO6Y6bEukZfYlk4LFJwQt7aC5uOarrcxw=",
	},
	{
		Name:       "lookup request",
		KeyHex:     "a6dde04d797ede8448fe35108e64013f",
		IVHex:      IVHex,
		Plaintext:  `{"header":{},"body":{"pincode":"400001"}}`,
		CipherText: "nVDQZNW63Z38j1mWOvSE20JuSSyHSmjztiZMZ+SITma9X1jiWLMwYuowwL69V989",
	},
	{
		Name:       "short text",
		KeyHex:     "a6dde04d797ede8448fe35108e64013f",
		IVHex:      IVHex,
		Plaintext:  "plain text",
		CipherText: "Lmj67W24Tdu8EG1BTE6XOA==",
	},
	{
		Name:       "multibyte text with 256 bit key",
		KeyHex:     "a6dde04d797ede8448fe35108e64013f3c92fbaea2e177811a0056175a6ba3f3",
		IVHex:      IVHex,
		Plaintext:  "नमस्ते 🌏",
		CipherText: "r/4/6DvpWmFSAPHHCZbboriXc+9lqACmXeFStGgEvFI=",
	},
}

// EnvelopeVectors use the default 128 bit key and 10000 iterations.
var EnvelopeVectors = []EnvelopeVector{
	{
		Name:       "lookup request",
		Passphrase: Passphrase,
		Wrapped:    "MTI4OjoxMDAwMDo6MTAxMTEyMTMxNDE1MTYxNzE4MTkxYTFiMWMxZDFlMWY6OjAwMDEwMjAzMDQwNTA2MDcwODA5MGEwYjBjMGQwZTBmOjpuVkRRWk5XNjNaMzhqMW1XT3ZTRTIwSnVTU3lIU21qenRpWk1aK1NJVG1hOVgxamlXTE13WXVvd3dMNjlWOTg5",
		IVHex:      IVHex,
		SaltHex:    SaltHex,
		CipherText: "nVDQZNW63Z38j1mWOvSE20JuSSyHSmjztiZMZ+SITma9X1jiWLMwYuowwL69V989",
		Plaintext:  `{"header":{},"body":{"pincode":"400001"}}`,
	},
	{
		Name:       "plain text",
		Passphrase: Passphrase,
		Wrapped:    "MTI4OjoxMDAwMDo6MTAxMTEyMTMxNDE1MTYxNzE4MTkxYTFiMWMxZDFlMWY6OjAwMDEwMjAzMDQwNTA2MDcwODA5MGEwYjBjMGQwZTBmOjpMbWo2N1cyNFRkdThFRzFCVEU2WE9BPT0=",
		IVHex:      IVHex,
		SaltHex:    SaltHex,
		CipherText: "Lmj67W24Tdu8EG1BTE6XOA==",
		Plaintext:  "plain text",
	},
	{
		Name:       "city response",
		Passphrase: Passphrase,
		Wrapped:    "MTI4OjoxMDAwMDo6MTAxMTEyMTMxNDE1MTYxNzE4MTkxYTFiMWMxZDFlMWY6OjAwMDEwMjAzMDQwNTA2MDcwODA5MGEwYjBjMGQwZTBmOjoyRkhGMnM1KyttMmk1MWthTCs4bytOK2JTanNnK3NxVnpuS0ZmQTJlMythdHgrbTRkN3NjTy9kbDZVQ0VtSmV6",
		IVHex:      IVHex,
		SaltHex:    SaltHex,
		CipherText: "2FHF2s5++m2i51kaL+8o+N+bSjsg+sqVznKFfA2e3+atx+m4d7scO/dl6UCEmJez",
		Plaintext:  `{"pincode":"400001","cityname":"Mumbai"}`,
	},
	{
		Name:       "master response",
		Passphrase: Passphrase,
		Wrapped:    "MTI4OjoxMDAwMDo6MTAxMTEyMTMxNDE1MTYxNzE4MTkxYTFiMWMxZDFlMWY6OjAwMDEwMjAzMDQwNTA2MDcwODA5MGEwYjBjMGQwZTBmOjpKOXdoN016THhIdGlBS080STg5WVYxb2JWY1ZyUXNBdGNvK2oxekJYRGZ4dkV0RlhNcnhtcGpic1dPam9YMllFM1VIdWFQZGJ3aXp4T25sdlVicURBazFScHRraXFBMjY3Y2I2TGo2N0xWbnVjbnpLb1J6TlpNVDNrb1llU1MrMQ==",
		IVHex:      IVHex,
		SaltHex:    SaltHex,
		CipherText: "J9wh7MzLxHtiAKO4I89YV1obVcVrQsAtco+j1zBXDfxvEtFXMrxmpjbsWOjoX2YE3UHuaPdbwizxOnlvUbqDAk1RptkiqA267cb6Lj67LVnucnzKoRzNZMT3koYeSS+1",
		Plaintext:  `{"body":{"Master":[{"pincode":"400001","cityname":"Mumbai","statename":"Maharashtra"}]}}`,
	},
}
