package contract

import "go.bytecodealliance.org/wit"

// Descriptor pairs a contract type with its WIT shape.
type Descriptor struct {
	Namespace string
	Name      string
	Type      *wit.TypeDef
}

// Cases returns the case names of a variant or enum descriptor.
func (d Descriptor) Cases() []string {
	switch k := d.Type.Kind.(type) {
	case *wit.Variant:
		out := make([]string, len(k.Cases))
		for i, c := range k.Cases {
			out[i] = c.Name
		}
		return out
	case *wit.Enum:
		out := make([]string, len(k.Cases))
		for i, c := range k.Cases {
			out[i] = c.Name
		}
		return out
	}
	return nil
}

// Describe returns the WIT shape of every tagged union in the contract.
func Describe() []Descriptor {
	bytes := &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}

	return []Descriptor{
		errorVariant(NamespaceCacheScalar, "error", cacheErrorNames[:]),
		errorVariant(NamespaceTopic, "topic-error", topicErrorNames[:]),
		errorVariant(NamespaceAWSAuth, "auth-error", authErrorNames[:]),
		errorVariant(NamespaceAWSDDB, "ddb-error", ddbErrorNames[:]),
		errorVariant(NamespaceAWSS3, "s3-error", s3ErrorNames[:]),
		errorVariant(NamespaceAWSSecrets, "secrets-error", secretsErrorNames[:]),
		errorVariant(NamespaceAWSLambda, "lambda-error", lambdaErrorNames[:]),
		errorVariant(NamespaceHTTP, "http-error", httpErrorNames[:]),
		errorVariant(NamespaceRedis, "redis-error", redisErrorNames[:]),
		errorVariant(NamespaceSpawn, "spawn-error", spawnErrorNames[:]),
		errorVariant(NamespaceLogging, "log-error", logErrorNames[:]),
		errorVariant(NamespaceToken, "token-error", tokenErrorNames[:]),
		errorVariant(NamespaceBytes, "bytes-error", bytesErrorNames[:]),
		{
			Namespace: NamespaceBytes,
			Name:      "data",
			Type: &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
				{Name: dataNames[DataValue], Type: bytes},
				{Name: dataNames[DataBuffer], Type: wit.U32{}},
			}}},
		},
		{
			Namespace: NamespaceToken,
			Name:      "cache-role",
			Type: &wit.TypeDef{Kind: &wit.Enum{Cases: []wit.EnumCase{
				{Name: "cache-permit-none"}, {Name: "cache-read-write"},
				{Name: "cache-read-only"}, {Name: "cache-write-only"},
			}}},
		},
		{
			Namespace: NamespaceToken,
			Name:      "cache-item-selector",
			Type: &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
				{Name: "all-items"},
				{Name: "key", Type: bytes},
				{Name: "key-prefix", Type: bytes},
			}}},
		},
		{
			Namespace: NamespaceRedis,
			Name:      "value",
			Type: &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
				{Name: redisValueNames[RedisNil]},
				{Name: redisValueNames[RedisInt], Type: wit.S64{}},
				{Name: redisValueNames[RedisData], Type: bytes},
				{Name: redisValueNames[RedisBulk], Type: wit.U32{}},
				{Name: redisValueNames[RedisStatus], Type: wit.String{}},
				{Name: redisValueNames[RedisOkay]},
			}}},
		},
		{
			Namespace: NamespaceCacheList,
			Name:      "pop-response",
			Type: &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
				{Name: "found", Type: &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
					{Name: "value", Type: bytes},
					{Name: "list-length", Type: wit.U32{}},
				}}}},
				{Name: "missing"},
			}}},
		},
		{
			Namespace: NamespaceHTTP,
			Name:      "authorization",
			Type: &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
				{Name: "none"},
				{Name: "aws-sigv4", Type: &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
					{Name: "provider", Type: wit.U32{}},
					{Name: "region", Type: wit.String{}},
					{Name: "service", Type: wit.String{}},
				}}}},
			}}},
		},
		{
			Namespace: NamespaceAWSSecrets,
			Name:      "secret-value",
			Type: &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
				{Name: "secret-bytes", Type: bytes},
				{Name: "secret-string", Type: wit.String{}},
			}}},
		},
		{
			Namespace: NamespaceLogging,
			Name:      "level",
			Type: &wit.TypeDef{Kind: &wit.Enum{Cases: []wit.EnumCase{
				{Name: "debug"}, {Name: "info"}, {Name: "warn"}, {Name: "error"}, {Name: "off"},
			}}},
		},
	}
}

func errorVariant(namespace, name string, cases []string) Descriptor {
	wc := make([]wit.Case, len(cases))
	for i, c := range cases {
		wc[i] = wit.Case{Name: c, Type: wit.String{}}
	}
	return Descriptor{
		Namespace: namespace,
		Name:      name,
		Type:      &wit.TypeDef{Kind: &wit.Variant{Cases: wc}},
	}
}
