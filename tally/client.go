package tally

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vraj1091/RAG/config"
)

// Client fetches live ledger data. Implementations must be safe for
// concurrent use.
type Client interface {
	Ledgers(ctx context.Context) (*Snapshot, error)
}

// ledgerEnvelope is the TDL request Tally answers with every ledger and
// its parent group plus opening/closing balances.
const ledgerEnvelope = `<ENVELOPE>
	<HEADER>
		<VERSION>1</VERSION>
		<TALLYREQUEST>Export</TALLYREQUEST>
		<TYPE>Collection</TYPE>
		<ID>AllLedgers</ID>
	</HEADER>
	<BODY>
		<DESC>
			<STATICVARIABLES>
				<SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>
			</STATICVARIABLES>
			<TDL>
				<TDLMESSAGE>
					<COLLECTION NAME="AllLedgers" ISMODIFY="No">
						<TYPE>Ledger</TYPE>
						<FETCH>Name, Parent, OpeningBalance, ClosingBalance</FETCH>
					</COLLECTION>
				</TDLMESSAGE>
			</TDL>
		</DESC>
	</BODY>
</ENVELOPE>`

type XMLClient struct {
	baseURL string
	company string
	client  *http.Client
}

var _ Client = (*XMLClient)(nil)

func NewXMLClient(cfg config.TallyConfig) *XMLClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &XMLClient{
		baseURL: cfg.BaseURL(),
		company: cfg.Company,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type ledgerElement struct {
	NameAttr string `xml:"NAME,attr"`
	Name     string `xml:"NAME"`
	Parent   string `xml:"PARENT"`
	Opening  string `xml:"OPENINGBALANCE"`
	Closing  string `xml:"CLOSINGBALANCE"`
}

func (c *XMLClient) Ledgers(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(ledgerEnvelope))
	if err != nil {
		return nil, fmt.Errorf("create tally request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tally: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("tally returned status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tally response: %w", err)
	}

	ledgers, err := parseLedgers(data)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Company:   c.company,
		FetchedAt: time.Now(),
		Ledgers:   ledgers,
	}, nil
}

// parseLedgers walks the response for LEDGER elements wherever Tally
// nests them. Tally emits invalid XML on occasion (bare ampersands in
// ledger names), so unescaped entities are repaired before decoding.
func parseLedgers(data []byte) ([]Ledger, error) {
	decoder := xml.NewDecoder(bytes.NewReader(sanitizeXML(data)))
	decoder.Strict = false

	var ledgers []Ledger
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode tally response: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "LEDGER" {
			continue
		}

		var elem ledgerElement
		if err := decoder.DecodeElement(&elem, &start); err != nil {
			return nil, fmt.Errorf("decode ledger element: %w", err)
		}

		name := strings.TrimSpace(elem.NameAttr)
		if name == "" {
			name = strings.TrimSpace(elem.Name)
		}
		if name == "" {
			continue
		}

		ledgers = append(ledgers, Ledger{
			Name:           name,
			Parent:         strings.TrimSpace(elem.Parent),
			OpeningBalance: parseBalance(elem.Opening),
			ClosingBalance: parseBalance(elem.Closing),
		})
	}

	return ledgers, nil
}

func parseBalance(raw string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

func sanitizeXML(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '&' {
			out.WriteByte(data[i])
			continue
		}
		rest := data[i:]
		if bytes.HasPrefix(rest, []byte("&amp;")) ||
			bytes.HasPrefix(rest, []byte("&lt;")) ||
			bytes.HasPrefix(rest, []byte("&gt;")) ||
			bytes.HasPrefix(rest, []byte("&quot;")) ||
			bytes.HasPrefix(rest, []byte("&apos;")) ||
			bytes.HasPrefix(rest, []byte("&#")) {
			out.WriteByte(data[i])
			continue
		}
		out.WriteString("&amp;")
	}
	return out.Bytes()
}
