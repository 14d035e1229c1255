package tokens

import (
	"github.com/pkg/errors"
	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens with a tiktoken codec.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter returns a counter for a model or, when model is empty, an encoding
// such as cl100k_base.
func NewCounter(model, encoding string) (*Counter, error) {
	if model != "" {
		c, err := tokenizer.ForModel(tokenizer.Model(model))
		if err != nil {
			return nil, errors.Wrapf(err, "could not create tokenizer for model %s", model)
		}
		return &Counter{codec: c}, nil
	}
	c, err := tokenizer.Get(tokenizer.Encoding(encoding))
	if err != nil {
		return nil, errors.Wrapf(err, "could not create tokenizer for encoding %s", encoding)
	}
	return &Counter{codec: c}, nil
}

func (c *Counter) Name() string {
	return c.codec.GetName()
}

func (c *Counter) Count(text string) (int, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, errors.Wrap(err, "could not encode text")
	}
	return len(ids), nil
}
