package redis

import (
	"context"

	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	"github.com/paperlex/paperlex/util"
)

var _ persistence.LogStorage = new(redisLogDao)

const WORKFLOW_LOG string = "WF_LOG"

type redisLogDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.WorkflowLog]
}

func NewRedisLogDao(conf Config) *redisLogDao {
	return &redisLogDao{
		baseDao:        *newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.WorkflowLog](),
	}
}

func (dao *redisLogDao) Append(log model.WorkflowLog) error {
	key := dao.getNamespaceKey(WORKFLOW_LOG, log.WorkflowId)
	ctx := context.Background()
	data, err := dao.encoderDecoder.Encode(log)
	if err != nil {
		return err
	}
	return dao.redisClient.LPush(ctx, key, data).Err()
}

func (dao *redisLogDao) ListByWorkflow(workflowId string, limit int) ([]model.WorkflowLog, error) {
	key := dao.getNamespaceKey(WORKFLOW_LOG, workflowId)
	ctx := context.Background()
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	rows, err := dao.redisClient.LRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.WorkflowLog, 0, len(rows))
	for _, row := range rows {
		log, err := dao.encoderDecoder.Decode([]byte(row))
		if err != nil {
			continue
		}
		out = append(out, *log)
	}
	return out, nil
}
