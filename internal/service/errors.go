package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// notFoundAs 将 gorm 的记录不存在转换为业务哨兵错误，其余错误原样包装
func notFoundAs(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", sentinel.Error(), err)
}
