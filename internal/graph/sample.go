package graph

// SampleGraph returns a small banking graph for demos and offline use.
func SampleGraph() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "1", Name: "张三", NodeType: "Person", Properties: Properties{
				"age": 35.0, "gender": "男", "idNumber": "110101198505153578", "phone": "13812345678",
			}},
			{ID: "2", Name: "李四", NodeType: "Person", Properties: Properties{
				"age": 42.0, "gender": "男", "idNumber": "110101197912253519", "phone": "13987654321",
			}},
			{ID: "3", Name: "王五", NodeType: "Person", Properties: Properties{
				"age": 28.0, "gender": "女", "idNumber": "110101199301052389", "phone": "13765432198",
			}},
			{ID: "4", Name: "中国银行北京分行", NodeType: "Bank", Properties: Properties{
				"location": "北京市西城区复兴门内大街1号", "phone": "010-12345678", "swiftCode": "BKCHCNBJ",
			}},
			{ID: "5", Name: "6225880137691234", NodeType: "Account", Properties: Properties{
				"accountType": "储蓄卡", "balance": 58906.25, "openDate": "2018-03-15", "status": "正常",
			}},
			{ID: "6", Name: "6225880198761234", NodeType: "Account", Properties: Properties{
				"accountType": "信用卡", "balance": 12500.0, "openDate": "2019-06-22", "status": "正常", "creditLimit": 50000.0,
			}},
			{ID: "7", Name: "转账交易20230518001", NodeType: "Transaction", Properties: Properties{
				"amount": 5000.0, "currency": "CNY", "transactionTime": "2023-05-18 14:32:17", "description": "购物消费",
			}},
			{ID: "8", Name: "招商银行北京分行", NodeType: "Bank", Properties: Properties{
				"location": "北京市朝阳区建国门外大街甲6号", "phone": "010-87654321", "swiftCode": "CMBCCNBS",
			}},
			{ID: "9", Name: "阿里巴巴(北京)有限公司", NodeType: "Company", Properties: Properties{
				"industry": "电子商务", "registrationNumber": "91110105MA007QEXXX", "foundingDate": "2015-09-08",
				"legalRepresentative": "马云",
			}},
		},
		Edges: []Relationship{
			{ID: "e1", Source: "1", Target: "5", RelationLabel: "拥有", Properties: Properties{"since": "2018-03-15"}},
			{ID: "e2", Source: "2", Target: "6", RelationLabel: "拥有", Properties: Properties{"since": "2019-06-22"}},
			{ID: "e3", Source: "5", Target: "4", RelationLabel: "属于", Properties: Properties{"branchName": "北京分行"}},
			{ID: "e4", Source: "6", Target: "8", RelationLabel: "属于", Properties: Properties{"branchName": "北京分行"}},
			{ID: "e5", Source: "5", Target: "7", RelationLabel: "发起", Properties: Properties{"role": "付款方"}},
			{ID: "e6", Source: "7", Target: "6", RelationLabel: "接收", Properties: Properties{"role": "收款方"}},
			{ID: "e7", Source: "1", Target: "9", RelationLabel: "就职于", Properties: Properties{
				"position": "软件工程师", "department": "技术部", "since": "2020-01-15",
			}},
			{ID: "e8", Source: "3", Target: "9", RelationLabel: "就职于", Properties: Properties{
				"position": "市场经理", "department": "市场部", "since": "2019-04-10",
			}},
		},
	}
}
