package report

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/saibuild/buildoutput"
)

var log = commonlog.GetLogger("sai.report")

// JSON writes every event as one JSON object per line.
type JSON struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSON(w io.Writer) *JSON {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSON{enc: enc}
}

func (j *JSON) OnEvent(e buildoutput.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(e); err != nil {
		log.Error("encode build event", "error", err)
	}
}
