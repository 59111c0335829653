package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const credentialTypeField = "type"

// SerializedCredential is the storage row shape shared by resource-server
// and user credentials. Value holds the variant payload keyed by TypeID;
// DEKAlias references an externally managed data-encryption key.
type SerializedCredential struct {
	ID               string          `json:"id"`
	TypeID           string          `json:"type_id"`
	Metadata         Metadata        `json:"metadata"`
	Value            json.RawMessage `json:"value"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	NextRotationTime *time.Time      `json:"next_rotation_time,omitempty"`
	DEKAlias         string          `json:"dek_alias"`
}

func (c SerializedCredential) Clone() SerializedCredential {
	cloned := c
	cloned.Metadata = c.Metadata.Clone()
	cloned.Value = append(json.RawMessage(nil), c.Value...)
	cloned.NextRotationTime = cloneTimePointer(c.NextRotationTime)
	return cloned
}

// CredentialCodec encodes credential variants to and from their tagged wire
// form. The discriminator lives under the "type" key and holds the variant
// name verbatim.
type CredentialCodec interface {
	EncodeStatic(config StaticCredentialConfig) ([]byte, error)
	DecodeStatic(payload []byte) (StaticCredentialConfig, error)
	EncodeResourceServer(credential ResourceServerCredential) ([]byte, error)
	DecodeResourceServer(payload []byte) (ResourceServerCredential, error)
	EncodeUser(credential UserCredential) ([]byte, error)
	DecodeUser(payload []byte) (UserCredential, error)
}

type JSONCredentialCodec struct{}

func (JSONCredentialCodec) EncodeStatic(config StaticCredentialConfig) ([]byte, error) {
	if config == nil {
		return nil, fmt.Errorf("core: static credential config is required")
	}
	return marshalTagged(config.CredentialType(), config)
}

func (JSONCredentialCodec) DecodeStatic(payload []byte) (StaticCredentialConfig, error) {
	credentialType, err := peekCredentialType(payload)
	if err != nil {
		return nil, err
	}
	switch credentialType {
	case CredentialTypeNoAuth:
		return unmarshalVariant[NoAuthStaticConfig](payload)
	case CredentialTypeOAuth2AuthorizationCodeFlow:
		return unmarshalVariant[OAuth2AuthorizationCodeFlowStaticConfig](payload)
	case CredentialTypeOAuth2JWTBearerAssertionFlow:
		return unmarshalVariant[OAuth2JWTBearerAssertionFlowStaticConfig](payload)
	case CredentialTypeCustom:
		return unmarshalVariant[CustomStaticConfig](payload)
	}
	return nil, fmt.Errorf("core: unknown credential type %q", credentialType)
}

func (JSONCredentialCodec) EncodeResourceServer(credential ResourceServerCredential) ([]byte, error) {
	if credential == nil {
		return nil, fmt.Errorf("core: resource server credential is required")
	}
	return marshalTagged(credential.CredentialType(), credential)
}

func (JSONCredentialCodec) DecodeResourceServer(payload []byte) (ResourceServerCredential, error) {
	credentialType, err := peekCredentialType(payload)
	if err != nil {
		return nil, err
	}
	switch credentialType {
	case CredentialTypeNoAuth:
		return unmarshalVariant[NoAuthResourceServerCredential](payload)
	case CredentialTypeOAuth2AuthorizationCodeFlow:
		return unmarshalVariant[OAuth2AuthorizationCodeFlowResourceServerCredential](payload)
	case CredentialTypeOAuth2JWTBearerAssertionFlow:
		return unmarshalVariant[OAuth2JWTBearerAssertionFlowResourceServerCredential](payload)
	case CredentialTypeCustom:
		return unmarshalVariant[CustomResourceServerCredential](payload)
	}
	return nil, fmt.Errorf("core: unknown credential type %q", credentialType)
}

func (JSONCredentialCodec) EncodeUser(credential UserCredential) ([]byte, error) {
	if credential == nil {
		return nil, fmt.Errorf("core: user credential is required")
	}
	return marshalTagged(credential.CredentialType(), credential)
}

func (JSONCredentialCodec) DecodeUser(payload []byte) (UserCredential, error) {
	credentialType, err := peekCredentialType(payload)
	if err != nil {
		return nil, err
	}
	switch credentialType {
	case CredentialTypeNoAuth:
		return unmarshalVariant[NoAuthUserCredential](payload)
	case CredentialTypeOAuth2AuthorizationCodeFlow:
		return unmarshalVariant[OAuth2AuthorizationCodeFlowUserCredential](payload)
	case CredentialTypeOAuth2JWTBearerAssertionFlow:
		return unmarshalVariant[OAuth2JWTBearerAssertionFlowUserCredential](payload)
	case CredentialTypeCustom:
		return unmarshalVariant[CustomUserCredential](payload)
	}
	return nil, fmt.Errorf("core: unknown credential type %q", credentialType)
}

func marshalTagged(credentialType CredentialType, value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("core: encode credential payload: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("core: encode credential payload: %w", err)
	}
	tag, err := json.Marshal(string(credentialType))
	if err != nil {
		return nil, fmt.Errorf("core: encode credential payload: %w", err)
	}
	fields[credentialTypeField] = tag
	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("core: encode credential payload: %w", err)
	}
	return encoded, nil
}

func peekCredentialType(payload []byte) (CredentialType, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("core: credential payload is empty")
	}
	probe := struct {
		Type string `json:"type"`
	}{}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return "", fmt.Errorf("core: decode credential payload: %w", err)
	}
	if strings.TrimSpace(probe.Type) == "" {
		return "", fmt.Errorf("core: credential payload is missing a type discriminator")
	}
	return CredentialType(probe.Type), nil
}

func unmarshalVariant[T any](payload []byte) (T, error) {
	var decoded T
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return decoded, fmt.Errorf("core: decode credential payload: %w", err)
	}
	return decoded, nil
}
