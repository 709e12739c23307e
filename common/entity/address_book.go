package entity

// AddressBook 用户地址簿（只读）
type AddressBook struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64  `gorm:"column:user_id;not null;index:idx_address_user_id"`
	Consignee    string `gorm:"column:consignee;type:varchar(50)"`
	Sex          string `gorm:"column:sex;type:varchar(2)"`
	Phone        string `gorm:"column:phone;type:varchar(11)"`
	ProvinceName string `gorm:"column:province_name;type:varchar(32)"`
	CityName     string `gorm:"column:city_name;type:varchar(32)"`
	DistrictName string `gorm:"column:district_name;type:varchar(32)"`
	Detail       string `gorm:"column:detail;type:varchar(200)"`
	Label        string `gorm:"column:label;type:varchar(100)"`
	IsDefault    bool   `gorm:"column:is_default"`
}

// TableName 指定表名
func (AddressBook) TableName() string {
	return "address_book"
}
