package redis

import (
	"context"

	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	"github.com/paperlex/paperlex/util"
)

var _ persistence.WorkflowStorage = new(redisWorkflowDao)

const WORKFLOW_DEF string = "WF_DEF"
const WORKFLOW_IDS string = "WF_IDS"

type redisWorkflowDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Workflow]
}

func NewRedisWorkflowDao(conf Config) *redisWorkflowDao {
	return &redisWorkflowDao{
		baseDao:        *newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.Workflow](),
	}
}

func (dao *redisWorkflowDao) Save(wf model.Workflow) error {
	key := dao.getNamespaceKey(WORKFLOW_DEF, wf.Id)
	ctx := context.Background()
	data, err := dao.encoderDecoder.Encode(wf)
	if err != nil {
		return err
	}
	if err := dao.redisClient.Set(ctx, key, data, 0).Err(); err != nil {
		return err
	}
	return dao.redisClient.SAdd(ctx, dao.getNamespaceKey(WORKFLOW_IDS), wf.Id).Err()
}

func (dao *redisWorkflowDao) Get(id string) (*model.Workflow, error) {
	key := dao.getNamespaceKey(WORKFLOW_DEF, id)
	ctx := context.Background()
	val, err := dao.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return dao.encoderDecoder.Decode([]byte(val))
}

func (dao *redisWorkflowDao) Delete(id string) error {
	ctx := context.Background()
	if err := dao.redisClient.Del(ctx, dao.getNamespaceKey(WORKFLOW_DEF, id)).Err(); err != nil {
		return err
	}
	return dao.redisClient.SRem(ctx, dao.getNamespaceKey(WORKFLOW_IDS), id).Err()
}

func (dao *redisWorkflowDao) List() ([]model.Workflow, error) {
	ctx := context.Background()
	ids, err := dao.redisClient.SMembers(ctx, dao.getNamespaceKey(WORKFLOW_IDS)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.Workflow, 0, len(ids))
	for _, id := range ids {
		wf, err := dao.Get(id)
		if err != nil {
			continue
		}
		out = append(out, *wf)
	}
	sortByCreation(out)
	return out, nil
}

func (dao *redisWorkflowDao) ListEnabled() ([]model.Workflow, error) {
	all, err := dao.List()
	if err != nil {
		return nil, err
	}
	out := make([]model.Workflow, 0, len(all))
	for _, wf := range all {
		if wf.Enabled {
			out = append(out, wf)
		}
	}
	return out, nil
}
