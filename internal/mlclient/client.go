// Package mlclient gọi dịch vụ dự đoán giá bên ngoài (POST {base}/predict).
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout timeout cho một lần gọi, không retry
const DefaultTimeout = 10 * time.Second

// maxResponseBytes giới hạn body đọc từ dịch vụ
const maxResponseBytes = 4 << 20

// PredictRequest body gửi tới /predict
type PredictRequest struct {
	ProductID    string  `json:"productId"`
	StockLevel   float64 `json:"stockLevel"`
	DaysToExpiry int     `json:"daysToExpiry"`
}

// Prediction các field dùng từ response, Raw giữ nguyên body để lưu snapshot
type Prediction struct {
	OptimalPrice    float64
	ConfidenceScore *float64
	ModelVersion    string
	PredictionDate  *time.Time
	SellThroughRate *float64
	WasteReduction  *float64
	Raw             map[string]interface{}
}

// predictResponse body trả về. Chỉ optimalPrice bắt buộc là số, các field khác đọc lỏng:
// sai kiểu thì bỏ qua thay vì làm hỏng cả response.
type predictResponse map[string]json.RawMessage

// field đi theo path qua các object lồng nhau, nil nếu thiếu hoặc không phải object
func (r predictResponse) field(path ...string) json.RawMessage {
	cur := map[string]json.RawMessage(r)
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return nil
		}
		if i == len(path)-1 {
			return v
		}
		var next map[string]json.RawMessage
		if err := json.Unmarshal(v, &next); err != nil {
			return nil
		}
		cur = next
	}
	return nil
}

// number đọc số hữu hạn, nil nếu thiếu hoặc không phải số
func (r predictResponse) number(path ...string) *float64 {
	raw := r.field(path...)
	if raw == nil || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// text đọc chuỗi, số thì lấy nguyên dạng text (version: 5 -> "5")
func (r predictResponse) text(path ...string) string {
	raw := r.field(path...)
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Client gọi dịch vụ dự đoán qua HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient tạo client. timeout <= 0 thì dùng DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict gọi /predict một lần. Mọi lỗi trả về dạng UpstreamError.
func (c *Client) Predict(ctx context.Context, in PredictRequest) (*Prediction, error) {
	log := logger.WithContext(ctx).WithFields(logrus.Fields{
		"ml_product_id":  in.ProductID,
		"stock_level":    in.StockLevel,
		"days_to_expiry": in.DaysToExpiry,
	})

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, common.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, common.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("[ML] Prediction request failed")
		msg := "Prediction service unavailable"
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			msg = "Prediction service timed out"
		}
		return nil, common.NewUpstreamError(http.StatusBadGateway, msg, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, common.NewUpstreamError(http.StatusBadGateway, "Failed to read prediction response", err.Error())
	}

	var parsed predictResponse
	jsonErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("Prediction service returned status %d", resp.StatusCode)
		if jsonErr == nil {
			if m := parsed.text("message"); m != "" {
				msg = m
			} else if m := parsed.text("error"); m != "" {
				msg = m
			}
		}
		log.WithFields(logrus.Fields{
			"status":   resp.StatusCode,
			"response": truncate(string(body), 500),
		}).Warn("[ML] Prediction service returned error")
		return nil, common.NewUpstreamError(resp.StatusCode, msg, nil)
	}
	if jsonErr != nil {
		return nil, common.NewUpstreamError(http.StatusBadGateway, "invalid price", "response is not a JSON object")
	}

	price := parsed.number("recommendations", "optimalPrice")
	if price == nil {
		var details interface{}
		if e := parsed.text("error"); e != "" {
			details = e
		}
		return nil, common.NewUpstreamError(http.StatusBadGateway, "invalid price", details)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(body, &raw)

	out := &Prediction{
		OptimalPrice:    *price,
		ConfidenceScore: parsed.number("recommendations", "confidenceScore"),
		ModelVersion:    parsed.text("algorithm", "version"),
		SellThroughRate: parsed.number("impact", "sellThroughRate"),
		WasteReduction:  parsed.number("impact", "wasteReduction"),
		Raw:             raw,
	}
	if t, ok := parsePredictionDate(parsed.text("predictionDate")); ok {
		out.PredictionDate = &t
	}

	log.WithFields(logrus.Fields{
		"optimal_price": out.OptimalPrice,
		"model_version": out.ModelVersion,
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Debug("[ML] Prediction received")
	return out, nil
}

// parsePredictionDate chấp nhận RFC3339 hoặc ISO không có múi giờ (datetime.isoformat)
func parsePredictionDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
