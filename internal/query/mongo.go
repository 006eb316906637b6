package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var mongoOps = map[Op]string{Eq: "$eq", Gt: "$gt", Gte: "$gte", Lt: "$lt", Lte: "$lte", In: "$in"}

// Lookup eager-loads related documents into the As key.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	// Fields limits the related documents to these keys; empty keeps all.
	Fields []string
	// One embeds a single document instead of an array.
	One bool
}

// Stages returns the aggregation stages for l.
func (l Lookup) Stages() []bson.D {
	spec := bson.D{
		{Key: "from", Value: l.From},
		{Key: "localField", Value: l.LocalField},
		{Key: "foreignField", Value: l.ForeignField},
	}
	if len(l.Fields) > 0 {
		spec = append(spec, bson.E{Key: "pipeline", Value: bson.A{
			bson.D{{Key: "$project", Value: include(l.Fields)}},
		}})
	}
	spec = append(spec, bson.E{Key: "as", Value: l.As})

	stages := []bson.D{{{Key: "$lookup", Value: spec}}}
	if l.One {
		stages = append(stages, bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + l.As},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}})
	}
	return stages
}

// MongoFilter translates the filters, followed by any extra conditions the
// caller scopes the query with. Conditions on one field share a document.
func (q Query) MongoFilter(extra ...bson.E) bson.D {
	var (
		order  []string
		byName = map[string]bson.D{}
	)
	for _, f := range q.Filters {
		key := f.Field.StorageName()
		if _, seen := byName[key]; !seen {
			order = append(order, key)
		}
		val := f.Value
		if vals, ok := val.([]any); ok {
			val = bson.A(vals)
		}
		byName[key] = append(byName[key], bson.E{Key: mongoOps[f.Op], Value: val})
	}

	filter := bson.D{}
	for _, key := range order {
		conds := byName[key]
		if len(conds) == 1 && conds[0].Key == "$eq" {
			filter = append(filter, bson.E{Key: key, Value: conds[0].Value})
			continue
		}
		filter = append(filter, bson.E{Key: key, Value: conds})
	}
	return append(filter, extra...)
}

// MongoSort translates the sort keys.
func (q Query) MongoSort() bson.D {
	sort := make(bson.D, 0, len(q.Sort))
	for _, k := range q.Sort {
		dir := 1
		if k.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: k.Field.StorageName(), Value: dir})
	}
	return sort
}

// MongoProjection translates the selected fields. Eager-loaded keys stay
// visible. It returns nil when every field is wanted.
func (q Query) MongoProjection(lookups ...Lookup) bson.D {
	if len(q.Select) == 0 {
		return nil
	}
	keys := make([]string, 0, len(q.Select)+len(lookups))
	for _, f := range q.Select {
		keys = append(keys, f.StorageName())
	}
	for _, l := range lookups {
		keys = append(keys, l.As)
	}
	return include(keys)
}

// MongoPipeline is the aggregation for one page of q scoped by extra.
func (q Query) MongoPipeline(extra bson.D, lookups ...Lookup) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: q.MongoFilter(extra...)}},
	}
	if sort := q.MongoSort(); len(sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$skip", Value: int64(q.Skip())}},
		bson.D{{Key: "$limit", Value: int64(q.Limit)}},
	)
	for _, l := range lookups {
		pipeline = append(pipeline, l.Stages()...)
	}
	if proj := q.MongoProjection(lookups...); proj != nil {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: proj}})
	}
	return pipeline
}

// GeoWithin matches documents whose point field lies within radius radians
// of (lng, lat).
func GeoWithin(field string, lng, lat, radius float64) bson.E {
	return bson.E{Key: field, Value: bson.D{{Key: "$geoWithin", Value: bson.D{
		{Key: "$centerSphere", Value: bson.A{bson.A{lng, lat}, radius}},
	}}}}
}

func include(keys []string) bson.D {
	proj := make(bson.D, 0, len(keys))
	for _, k := range keys {
		proj = append(proj, bson.E{Key: k, Value: 1})
	}
	return proj
}
