package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"phishtrack/pkg/goutil"
)

func TestToSqlWithArgs(t *testing.T) {
	sql, args := ToSqlWithArgs([]*Condition{
		{
			Field:         "campaign_id",
			Value:         goutil.Uint64(7),
			Op:            OpEq,
			NextLogicalOp: LogicalOpAnd,
		},
		{
			Field: "email",
			Value: goutil.String("a@example.com"),
			Op:    OpEq,
		},
	})

	assert.Equal(t, "campaign_id = ? AND email = ?", sql)
	assert.Len(t, args, 2)
}

func TestToSqlWithArgs_SkipsNilValues(t *testing.T) {
	sql, args := ToSqlWithArgs([]*Condition{
		{
			Field:         "id",
			Value:         (*uint64)(nil),
			Op:            OpEq,
			NextLogicalOp: LogicalOpAnd,
		},
		{
			Field:         "campaign_id",
			Value:         goutil.Uint64(7),
			Op:            OpEq,
			NextLogicalOp: LogicalOpAnd,
		},
		{
			Field: "email",
			Value: (*string)(nil),
			Op:    OpEq,
		},
	})

	assert.Equal(t, "campaign_id = ?", sql)
	assert.Len(t, args, 1)
}

func TestToSqlWithArgs_AllNil(t *testing.T) {
	sql, args := ToSqlWithArgs([]*Condition{
		{
			Field: "id",
			Value: (*uint64)(nil),
			Op:    OpEq,
		},
	})

	assert.Empty(t, sql)
	assert.Empty(t, args)
}

func TestToSqlWithArgs_OrAndIn(t *testing.T) {
	sql, args := ToSqlWithArgs([]*Condition{
		{
			Field:         "status",
			Value:         goutil.Uint32(1),
			Op:            OpEq,
			NextLogicalOp: LogicalOpOr,
		},
		{
			Field: "task_type",
			Value: []uint32{1, 2},
			Op:    OpIn,
		},
	})

	assert.Equal(t, "status = ? OR task_type IN ?", sql)
	assert.Len(t, args, 2)
}
