package rpaddress

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"takeout/common/entity"
	"takeout/internal/app/domains/entity/etaddress"
	"takeout/internal/app/domains/repo/rpbase"
	"takeout/internal/app/pkg/errorx"
)

// AddressRepository 地址簿仓储接口（只读）
type AddressRepository interface {
	// GetByIDAndUser 查询属于该用户的地址，不存在返回 errorx.ErrAddressNotFound
	GetByIDAndUser(ctx context.Context, addressID, userID int64) (*etaddress.Address, error)
}

// AddressRepositoryImpl 地址簿仓储实现（MySQL）
type AddressRepositoryImpl struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址簿仓储实例
func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &AddressRepositoryImpl{db: db}
}

func (r *AddressRepositoryImpl) GetByIDAndUser(ctx context.Context, addressID, userID int64) (*etaddress.Address, error) {
	var po entity.AddressBook
	err := rpbase.DB(ctx, r.db).Where("id = ? AND user_id = ?", addressID, userID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrAddressNotFound
		}
		return nil, err
	}
	return &etaddress.Address{
		ID:           po.ID,
		UserID:       po.UserID,
		Consignee:    po.Consignee,
		Sex:          po.Sex,
		Phone:        po.Phone,
		ProvinceName: po.ProvinceName,
		CityName:     po.CityName,
		DistrictName: po.DistrictName,
		Detail:       po.Detail,
		Label:        po.Label,
		IsDefault:    po.IsDefault,
	}, nil
}
