package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"createRule": null,
			"deleteRule": null,
			"fields": [
				{
					"autogeneratePattern": "[a-z0-9]{15}",
					"hidden": false,
					"id": "text3208210256",
					"max": 15,
					"min": 15,
					"name": "id",
					"pattern": "^[a-z0-9]+$",
					"presentable": false,
					"primaryKey": true,
					"required": true,
					"system": true,
					"type": "text"
				},
				{
					"cascadeDelete": false,
					"collectionId": "pbc_1987654301",
					"hidden": false,
					"id": "relation2886430923",
					"maxSelect": 1,
					"minSelect": 0,
					"name": "vendor",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "relation"
				},
				{
					"hidden": false,
					"id": "select1006037773",
					"maxSelect": 1,
					"name": "transport",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "select",
					"values": [
						"bus",
						"van",
						"boat",
						"train"
					]
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text2063244529",
					"max": 0,
					"min": 0,
					"name": "origin",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text3479623229",
					"max": 0,
					"min": 0,
					"name": "destination",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "date2502384312",
					"max": "",
					"min": "",
					"name": "departure",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "date"
				},
				{
					"hidden": false,
					"id": "number3402113753",
					"max": null,
					"min": 0,
					"name": "price",
					"onlyInt": false,
					"presentable": false,
					"required": true,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "number2392944706",
					"max": null,
					"min": 0,
					"name": "remaining",
					"onlyInt": true,
					"presentable": false,
					"required": false,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "select3144514440",
					"maxSelect": 1,
					"name": "verification",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "select",
					"values": [
						"pending",
						"approved",
						"rejected"
					]
				},
				{
					"hidden": false,
					"id": "bool1547992806",
					"name": "advertised",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "bool"
				},
				{
					"hidden": false,
					"id": "bool2218942425",
					"name": "fraud_flagged",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "bool"
				},
				{
					"hidden": false,
					"id": "date1268231114",
					"max": "",
					"min": "",
					"name": "verified_at",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "date"
				},
				{
					"hidden": false,
					"id": "date3895243357",
					"max": "",
					"min": "",
					"name": "advertised_at",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "date"
				},
				{
					"hidden": false,
					"id": "autodate2990389176",
					"name": "created",
					"onCreate": true,
					"onUpdate": false,
					"presentable": false,
					"system": false,
					"type": "autodate"
				},
				{
					"hidden": false,
					"id": "autodate3332085495",
					"name": "updated",
					"onCreate": true,
					"onUpdate": true,
					"presentable": false,
					"system": false,
					"type": "autodate"
				}
			],
			"id": "pbc_2046519832",
			"indexes": [
				"CREATE INDEX ` + "`" + `idx_tickets_vendor` + "`" + ` ON ` + "`" + `tickets` + "`" + ` (` + "`" + `vendor` + "`" + `)",
				"CREATE INDEX ` + "`" + `idx_tickets_advertised` + "`" + ` ON ` + "`" + `tickets` + "`" + ` (` + "`" + `advertised` + "`" + `)"
			],
			"listRule": null,
			"name": "tickets",
			"system": false,
			"type": "base",
			"updateRule": null,
			"viewRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_2046519832")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
