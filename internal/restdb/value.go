package restdb

import (
	"strconv"
	"strings"
	"time"

	"github.com/lukman83/campusfair/internal/models"
)

// value is a Firestore typed field value. Exactly one member is set.
type value struct {
	StringValue    *string     `json:"stringValue,omitempty"`
	IntegerValue   *string     `json:"integerValue,omitempty"`
	DoubleValue    *float64    `json:"doubleValue,omitempty"`
	BooleanValue   *bool       `json:"booleanValue,omitempty"`
	TimestampValue *string     `json:"timestampValue,omitempty"`
	ReferenceValue *string     `json:"referenceValue,omitempty"`
	ArrayValue     *arrayValue `json:"arrayValue,omitempty"`
	NullValue      *string     `json:"nullValue,omitempty"`
}

type arrayValue struct {
	Values []value `json:"values,omitempty"`
}

type document struct {
	Name       string           `json:"name"`
	Fields     map[string]value `json:"fields"`
	CreateTime string           `json:"createTime"`
}

// ID is the last path segment of the document name.
func (d document) ID() string {
	return d.Name[strings.LastIndex(d.Name, "/")+1:]
}

func (d document) stringField(field string) string {
	v, ok := d.Fields[field]
	if !ok {
		return ""
	}
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntegerValue != nil:
		return *v.IntegerValue
	}
	return ""
}

// intField accepts integers, doubles and numeric strings.
func (d document) intField(field string) int64 {
	v, ok := d.Fields[field]
	if !ok {
		return 0
	}
	switch {
	case v.IntegerValue != nil:
		n, _ := strconv.ParseInt(*v.IntegerValue, 10, 64)
		return n
	case v.DoubleValue != nil:
		return int64(*v.DoubleValue)
	case v.StringValue != nil:
		n, _ := strconv.ParseInt(strings.TrimSpace(*v.StringValue), 10, 64)
		return n
	}
	return 0
}

func (d document) boolField(field string) bool {
	v, ok := d.Fields[field]
	return ok && v.BooleanValue != nil && *v.BooleanValue
}

func (d document) timeField(field string) time.Time {
	v, ok := d.Fields[field]
	if ok && v.TimestampValue != nil {
		if t, err := time.Parse(time.RFC3339Nano, *v.TimestampValue); err == nil {
			return t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, d.CreateTime); err == nil {
		return t
	}
	return time.Time{}
}

func (d document) stringsField(field string) []string {
	v, ok := d.Fields[field]
	if !ok || v.ArrayValue == nil {
		return nil
	}
	out := make([]string, 0, len(v.ArrayValue.Values))
	for _, e := range v.ArrayValue.Values {
		if e.StringValue != nil {
			out = append(out, *e.StringValue)
		}
	}
	return out
}

func (d document) product() models.Product {
	seller := d.stringField("sellerId")
	if seller == "" {
		// early listings stored the owner under storeId
		seller = d.stringField("storeId")
	}
	price := d.intField("price")
	if price < 0 {
		price = 0
	}
	return models.Product{
		ID:          d.ID(),
		Name:        d.stringField("name"),
		Description: d.stringField("description"),
		Price:       price,
		ImageURL:    d.stringField("imageUrl"),
		SellerID:    seller,
		CreatedAt:   d.timeField("createdAt"),
		Keywords:    d.stringsField("keywords"),
	}
}

func (d document) seller() models.Seller {
	return models.Seller{
		ID:               d.ID(),
		OwnerName:        d.stringField("ownerName"),
		StoreName:        d.stringField("storeName"),
		StoreNameLower:   d.stringField("storeNameLower"),
		StoreSlug:        d.stringField("storeSlug"),
		Phone:            d.stringField("phone"),
		StoreDescription: d.stringField("storeDescription"),
		Email:            d.stringField("email"),
		SellerCode:       d.stringField("sellerCode"),
		Active:           d.boolField("active"),
		ProductCount:     int(d.intField("productCount")),
		CreatedAt:        d.timeField("createdAt"),
	}
}

func stringVal(s string) value { return value{StringValue: &s} }

func refVal(s string) value { return value{ReferenceValue: &s} }
