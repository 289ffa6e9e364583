package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	"github.com/paperlex/paperlex/util"
)

var _ persistence.MappingStorage = new(redisMappingDao)

const MAPPING string = "MAPPING"
const MAPPING_BY_CORRESPONDENT string = "MAPPING_PL"
const MAPPING_BY_CONTACT string = "MAPPING_LX"
const MAPPING_IDS string = "MAPPING_IDS"

type redisMappingDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.ContactMapping]
}

func NewRedisMappingDao(conf Config) *redisMappingDao {
	return &redisMappingDao{
		baseDao:        *newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.ContactMapping](),
	}
}

func (dao *redisMappingDao) Save(m model.ContactMapping) error {
	ctx := context.Background()
	data, err := dao.encoderDecoder.Encode(m)
	if err != nil {
		return err
	}
	pipe := dao.redisClient.TxPipeline()
	pipe.Set(ctx, dao.getNamespaceKey(MAPPING, m.Id), data, 0)
	pipe.Set(ctx, dao.getNamespaceKey(MAPPING_BY_CORRESPONDENT, m.CorrespondentId), m.Id, 0)
	pipe.Set(ctx, dao.getNamespaceKey(MAPPING_BY_CONTACT, m.ContactId), m.Id, 0)
	pipe.SAdd(ctx, dao.getNamespaceKey(MAPPING_IDS), m.Id)
	_, err = pipe.Exec(ctx)
	return err
}

func (dao *redisMappingDao) getById(ctx context.Context, id string) (*model.ContactMapping, error) {
	val, err := dao.redisClient.Get(ctx, dao.getNamespaceKey(MAPPING, id)).Result()
	if err != nil {
		return nil, err
	}
	return dao.encoderDecoder.Decode([]byte(val))
}

func (dao *redisMappingDao) getByIndex(indexKind, externalId string) (*model.ContactMapping, error) {
	ctx := context.Background()
	id, err := dao.redisClient.Get(ctx, dao.getNamespaceKey(indexKind, externalId)).Result()
	if errors.Is(err, rd.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dao.getById(ctx, id)
}

func (dao *redisMappingDao) GetByCorrespondent(correspondentId string) (*model.ContactMapping, error) {
	return dao.getByIndex(MAPPING_BY_CORRESPONDENT, correspondentId)
}

func (dao *redisMappingDao) GetByContact(contactId string) (*model.ContactMapping, error) {
	return dao.getByIndex(MAPPING_BY_CONTACT, contactId)
}

func (dao *redisMappingDao) List() ([]model.ContactMapping, error) {
	ctx := context.Background()
	ids, err := dao.redisClient.SMembers(ctx, dao.getNamespaceKey(MAPPING_IDS)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.ContactMapping, 0, len(ids))
	for _, id := range ids {
		m, err := dao.getById(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}
