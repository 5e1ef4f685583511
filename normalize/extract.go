// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package normalize

import (
	"regexp"
	"strings"

	"github.com/poiesic/assessor/core"
)

var (
	// bodyStart marks the beginning of the substantive legal text.
	bodyStart = regexp.MustCompile(`(?i)Ementa:`)
	// bodyEnd marks the closing formula of the document.
	bodyEnd = regexp.MustCompile(`(?i)Sala das Sessões`)
)

// Extract isolates the body between the first start marker and the first end
// marker after it. Without an end marker the body runs to the end of raw.
// Without a start marker the result is not OK and the body is empty.
// The presentation date is searched in the whole raw text.
func Extract(raw string) core.ExtractionResult {
	result := core.ExtractionResult{PresentationDate: PresentationDate(raw)}

	start := bodyStart.FindStringIndex(raw)
	if start == nil {
		return result
	}

	body := raw[start[0]:]
	if end := bodyEnd.FindStringIndex(body); end != nil {
		body = body[:end[0]]
	}

	result.Body = strings.TrimSpace(body)
	result.OK = result.Body != ""
	return result
}
