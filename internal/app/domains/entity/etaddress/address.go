package etaddress

import (
	"strings"
)

// Address 用户地址簿条目
type Address struct {
	ID           int64
	UserID       int64
	Consignee    string
	Sex          string
	Phone        string
	ProvinceName string
	CityName     string
	DistrictName string
	Detail       string
	Label        string
	IsDefault    bool
}

// FullAddress 拼接省市区与详细地址，用作订单上的地址快照
func (a *Address) FullAddress() string {
	var b strings.Builder
	for _, part := range []string{a.ProvinceName, a.CityName, a.DistrictName, a.Detail} {
		b.WriteString(strings.TrimSpace(part))
	}
	return b.String()
}
