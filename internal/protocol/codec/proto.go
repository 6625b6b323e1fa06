package codec

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/palemoky/daifugo/internal/protocol"
)

// 二进制信封字段
//
//	1: type    string
//	2: payload google.protobuf.Value
//	3: sent_at google.protobuf.Timestamp
const (
	fieldType    protowire.Number = 1
	fieldPayload protowire.Number = 2
	fieldSentAt  protowire.Number = 3
)

// Proto 二进制帧编解码，payload 以 structpb.Value 表示
type Proto struct{}

func (Proto) Name() string { return NameProto }

func (Proto) Binary() bool { return true }

func (Proto) Encode(msg *protocol.Message) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldType, protowire.BytesType)
	b = protowire.AppendString(b, string(msg.Type))

	if len(msg.Payload) > 0 {
		v := GetValue()
		defer PutValue(v)
		if err := protojson.Unmarshal(msg.Payload, v); err != nil {
			return nil, fmt.Errorf("payload to value: %w", err)
		}
		data, err := proto.Marshal(v)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, data)
	}

	sentAt := msg.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	ts, err := proto.Marshal(timestamppb.New(sentAt))
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, fieldSentAt, protowire.BytesType)
	b = protowire.AppendBytes(b, ts)
	return b, nil
}

func (Proto) Decode(data []byte) (*protocol.Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}

	msg := GetMessage()
	if err := decodeEnvelope(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, errors.New("missing message type")
	}
	return msg, nil
}

func decodeEnvelope(data []byte, msg *protocol.Message) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		// 未知字段跳过
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			continue
		}

		val, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch num {
		case fieldType:
			msg.Type = protocol.MessageType(val)
		case fieldPayload:
			payload, err := valueToJSON(val)
			if err != nil {
				return err
			}
			msg.Payload = payload
		case fieldSentAt:
			ts := &timestamppb.Timestamp{}
			if err := proto.Unmarshal(val, ts); err != nil {
				return fmt.Errorf("sent_at: %w", err)
			}
			if err := ts.CheckValid(); err != nil {
				return fmt.Errorf("sent_at: %w", err)
			}
			msg.SentAt = ts.AsTime()
		}
	}
	return nil
}

func valueToJSON(data []byte) ([]byte, error) {
	v := GetValue()
	defer PutValue(v)
	if err := proto.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return protojson.Marshal(v)
}
