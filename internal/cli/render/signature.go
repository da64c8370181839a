package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/usecase"
)

// SignatureRenderer renders mech signature envelopes
type SignatureRenderer struct {
	out  io.Writer
	json bool
}

// NewSignatureRenderer creates a new signature renderer
func NewSignatureRenderer(out io.Writer, json bool) *SignatureRenderer {
	return &SignatureRenderer{out: out, json: json}
}

type envelopeView struct {
	Mech   common.Address `json:"mech"`
	Offset uint64         `json:"offset"`
	V      uint8          `json:"v"`
	Length uint64         `json:"length"`
	Data   hexutil.Bytes  `json:"data"`
	Valid  *bool          `json:"valid,omitempty"`
}

// RenderEncoded prints the framed signature
func (r *SignatureRenderer) RenderEncoded(sig []byte) error {
	if r.json {
		return writeJSON(r.out, map[string]hexutil.Bytes{"signature": sig})
	}
	fmt.Fprintln(r.out, hexutil.Encode(sig))
	return nil
}

// RenderEnvelope prints a decoded signature
func (r *SignatureRenderer) RenderEnvelope(env *domain.SignatureEnvelope) error {
	return r.render(env, nil)
}

// RenderVerify prints the mech's verdict on a signature
func (r *SignatureRenderer) RenderVerify(result *usecase.VerifyMechSignatureResult) error {
	return r.render(result.Envelope, &result.Valid)
}

func (r *SignatureRenderer) render(env *domain.SignatureEnvelope, valid *bool) error {
	if r.json {
		return writeJSON(r.out, envelopeView{
			Mech:   env.Mech,
			Offset: env.Offset,
			V:      env.V,
			Length: env.Length,
			Data:   env.Data,
			Valid:  valid,
		})
	}

	fmt.Fprintln(r.out, keyValues([][2]string{
		{"Mech", env.Mech.Hex()},
		{"Offset", fmt.Sprint(env.Offset)},
		{"V", fmt.Sprint(env.V)},
		{"Length", fmt.Sprint(env.Length)},
		{"Inner signature", hexutil.Encode(env.Data)},
	}))
	if valid == nil {
		return nil
	}
	if *valid {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s accepts the signature", env.Mech.Hex())))
	} else {
		fmt.Fprintln(r.out, FormatError(fmt.Sprintf("%s rejects the signature", env.Mech.Hex())))
	}
	return nil
}
