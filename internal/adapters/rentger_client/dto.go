package rentger_client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

// flexString - id приходит то строкой, то числом
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", data)
	}
	*s = flexString(num.String())
	return nil
}

// flexFloat - сумма числом или строкой; пустое значение -> nil
type flexFloat struct {
	Value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	f.Value = nil
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		f.Value = &v
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f.Value = &parsed
	}
	return nil
}

// flexDate - дата в любом формате, который понимает domain.Timestamp; нулевое время -> nil
type flexDate struct {
	domain.Timestamp
}

func (d flexDate) ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type assetDTO struct {
	ID      flexString `json:"id"`
	Address string     `json:"address"`
	Alias   string     `json:"alias"`
}

type contractUserDTO struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
	Type int        `json:"type"`
}

type contractDTO struct {
	ID           flexString        `json:"id"`
	PropertyName string            `json:"propertyName"`
	RoomName     string            `json:"roomName"`
	TenantName   string            `json:"tenantName"`
	Users        []contractUserDTO `json:"users"`
	Price        flexFloat         `json:"price"`
	DateStart    flexDate          `json:"dateStart"`
	DateEnd      flexDate          `json:"dateEnd"`
}

func (d contractDTO) toDomain() domain.RemoteContract {
	users := make([]domain.RemoteContractUser, 0, len(d.Users))
	for _, u := range d.Users {
		users = append(users, domain.RemoteContractUser{ID: string(u.ID), Name: u.Name, Type: u.Type})
	}
	return domain.RemoteContract{
		ID:           string(d.ID),
		PropertyName: d.PropertyName,
		RoomName:     d.RoomName,
		TenantName:   d.TenantName,
		Users:        users,
		Price:        d.Price.Value,
		DateStart:    d.DateStart.ptr(),
		DateEnd:      d.DateEnd.ptr(),
	}
}

type createTenantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type createContractRequest struct {
	AssetID   string  `json:"assetId"`
	TenantID  string  `json:"tenantId"`
	DateStart string  `json:"dateStart"`
	DateEnd   *string `json:"dateEnd"`
	Price     float64 `json:"price"`
	Deposit   float64 `json:"deposit"`
}

type createdDTO struct {
	ID flexString `json:"id"`
}

const dateLayout = "2006-01-02"

func newCreateContractRequest(c domain.NewRemoteContract) createContractRequest {
	req := createContractRequest{
		AssetID:   c.AssetID,
		TenantID:  c.TenantID,
		DateStart: c.DateStart.Format(dateLayout),
		Price:     c.Price,
		Deposit:   c.Deposit,
	}
	if c.DateEnd != nil {
		end := c.DateEnd.Format(dateLayout)
		req.DateEnd = &end
	}
	return req
}

// unwrapList достает список из {"data": [...]}, {"items": [...]} или голого массива
func unwrapList(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	if body[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	for _, key := range []string{"data", "items", "results"} {
		if raw, ok := envelope[key]; ok {
			return unwrapList(raw)
		}
	}
	return nil, fmt.Errorf("response has no list payload")
}

// unwrapObject достает объект из {"data": {...}} или возвращает тело как есть
func unwrapObject(body []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		return envelope.Data
	}
	return body
}
