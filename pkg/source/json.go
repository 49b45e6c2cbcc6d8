package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pix4d/sgraph/pkg/secgroup"
)

// JSON reads the output of "aws ec2 describe-security-groups": an object
// with a "SecurityGroups" array. A bare array of groups is accepted too.
// Groups are decoded one at a time.
type JSON struct {
	rd io.Reader
}

func NewJSON(rd io.Reader) *JSON {
	return &JSON{rd: rd}
}

func (s *JSON) Each(ctx context.Context, fn func(secgroup.RawGroup) error) error {
	dec := json.NewDecoder(s.rd)

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading security groups: %s", err)
	}
	switch tok {
	case json.Delim('['):
		return s.eachElement(ctx, dec, fn)
	case json.Delim('{'):
	default:
		return fmt.Errorf("reading security groups: unexpected %v, want object or array", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading security groups: %s", err)
		}
		if key, _ := tok.(string); key != "SecurityGroups" {
			// Skip NextToken and friends.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("reading security groups: %s", err)
			}
			continue
		}
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("reading security groups: %s", err)
		}
		if tok != json.Delim('[') {
			return fmt.Errorf("reading security groups: SecurityGroups: unexpected %v, want array", tok)
		}
		if err := s.eachElement(ctx, dec, fn); err != nil {
			return err
		}
	}
	return nil
}

// eachElement decodes the elements of an array whose opening bracket has
// already been consumed, and consumes the closing bracket.
func (s *JSON) eachElement(ctx context.Context, dec *json.Decoder, fn func(secgroup.RawGroup) error) error {
	for i := 0; dec.More(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var raw secgroup.RawGroup
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("reading security group %d: %s", i, err)
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading security groups: %s", err)
	}
	return nil
}
